package internal

import (
	"fmt"
	"log"

	"github.com/Knetic/govaluate"
)

// Rule is an optional suppression rule. When its expression evaluates to
// true for an event that already passed the allow/deny filter, the event is
// dropped without delivery. Expressions see the parameters "type" and
// "livemode" plus every data.object field flattened under a "data." prefix;
// dotted names must use govaluate's bracket syntax, e.g.
// [data.amount_due] > 100000.
type Rule struct {
	When string `yaml:"when"`
	Note string `yaml:"note"`
}

type compiledSuppression struct {
	note string
	expr *govaluate.EvaluableExpression
}

type RuleEngine struct {
	rules  []compiledSuppression
	logger *log.Logger
}

func NewRuleEngine(rules []Rule, logger *log.Logger) (*RuleEngine, error) {
	if logger == nil {
		logger = log.Default()
	}
	compiled := make([]compiledSuppression, 0, len(rules))
	for i, rule := range rules {
		if rule.When == "" {
			return nil, fmt.Errorf("rule %d has no when expression", i)
		}
		expr, err := govaluate.NewEvaluableExpression(rule.When)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		note := rule.Note
		if note == "" {
			note = rule.When
		}
		compiled = append(compiled, compiledSuppression{note: note, expr: expr})
	}
	return &RuleEngine{rules: compiled, logger: logger}, nil
}

// Suppresses reports whether any rule matches the event, returning the note
// of the first match. Evaluation errors (typically missing fields) never
// suppress.
func (r *RuleEngine) Suppresses(event Event) (string, bool) {
	if len(r.rules) == 0 {
		return "", false
	}

	params := ruleParams(event)
	for _, rule := range r.rules {
		result, err := rule.expr.Evaluate(params)
		if err != nil {
			r.logger.Printf("rule %q eval failed: %v", rule.note, err)
			continue
		}
		if matched, _ := result.(bool); matched {
			return rule.note, true
		}
	}
	return "", false
}

// ruleParams flattens the event into the parameter map rule expressions are
// evaluated against. Nested data.object maps collapse into dotted keys,
// array elements into indexed keys.
func ruleParams(event Event) map[string]interface{} {
	params := map[string]interface{}{
		"type":     event.Type,
		"livemode": event.Livemode,
	}
	for key, value := range event.Data {
		flattenInto(params, "data."+key, value)
	}
	return params
}

func flattenInto(out map[string]interface{}, path string, value interface{}) {
	switch typed := value.(type) {
	case map[string]interface{}:
		for key, child := range typed {
			flattenInto(out, path+"."+key, child)
		}
	case []interface{}:
		for i, child := range typed {
			flattenInto(out, fmt.Sprintf("%s[%d]", path, i), child)
		}
	default:
		out[path] = value
	}
}
