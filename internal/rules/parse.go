// Package rules supplies the routing-rule side of the document: a line parser
// for Clash classical rule text and the providers that hand the assembler an
// ordered rule list plus a group plan.
package rules

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/subweave/subweave/internal/model"
)

type RuleError struct {
	Code    string
	Message string
	Hint    string
	Cause   error
}

func (e *RuleError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *RuleError) Unwrap() error { return e.Cause }

// ParseLine parses a single "TYPE,VALUE,ACTION" rule line.
func ParseLine(line string) (model.Rule, error) {
	line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
	if line == "" || strings.HasPrefix(line, "#") {
		return model.Rule{}, &RuleError{Code: "RULE_PARSE_ERROR", Message: "规则行为空或是注释"}
	}

	parts := strings.Split(line, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	typ := strings.ToUpper(parts[0])
	switch typ {
	case "DOMAIN", "DOMAIN-SUFFIX", "DOMAIN-KEYWORD", "GEOIP":
		if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
			return model.Rule{}, &RuleError{
				Code:    "RULE_PARSE_ERROR",
				Message: "规则字段数量不合法",
				Hint:    "expected: TYPE,VALUE,ACTION",
			}
		}
		return model.Rule{Type: typ, Value: parts[1], Action: parts[2]}, nil
	case "IP-CIDR":
		return parseIPCidr(parts)
	case "MATCH":
		if len(parts) != 2 || parts[1] == "" {
			return model.Rule{}, &RuleError{
				Code:    "RULE_PARSE_ERROR",
				Message: "MATCH 规则必须是 MATCH,<ACTION>",
			}
		}
		return model.Rule{Type: "MATCH", Action: parts[1]}, nil
	default:
		return model.Rule{}, &RuleError{
			Code:    "UNSUPPORTED_RULE_TYPE",
			Message: fmt.Sprintf("不支持的规则类型：%s", typ),
		}
	}
}

// ParseList parses a rule file leniently: lines that do not parse are skipped
// so one bad line in a third-party list never discards the rest.
func ParseList(text string) []model.Rule {
	lines := strings.Split(text, "\n")
	out := make([]model.Rule, 0, len(lines))
	for _, line := range lines {
		r, err := ParseLine(line)
		if err != nil {
			continue
		}
		out = append(out, r)
	}
	return out
}

func parseIPCidr(parts []string) (model.Rule, error) {
	if len(parts) < 3 || len(parts) > 4 || parts[1] == "" || parts[2] == "" {
		return model.Rule{}, &RuleError{
			Code:    "RULE_PARSE_ERROR",
			Message: "IP-CIDR 规则字段数量不合法",
			Hint:    "expected: IP-CIDR,CIDR,ACTION[,no-resolve]",
		}
	}
	noResolve := false
	if len(parts) == 4 {
		if !strings.EqualFold(parts[3], "no-resolve") {
			return model.Rule{}, &RuleError{
				Code:    "RULE_PARSE_ERROR",
				Message: "IP-CIDR 的可选项仅支持 no-resolve",
			}
		}
		noResolve = true
	}
	if err := validateCIDR(parts[1]); err != nil {
		return model.Rule{}, &RuleError{
			Code:    "RULE_PARSE_ERROR",
			Message: "IP-CIDR 的 CIDR 不合法",
			Hint:    "expected: e.g. 1.2.3.4/32",
			Cause:   err,
		}
	}
	return model.Rule{Type: "IP-CIDR", Value: parts[1], Action: parts[2], NoResolve: noResolve}, nil
}

func validateCIDR(s string) error {
	ip, _, err := net.ParseCIDR(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	if ip == nil {
		return errors.New("not a cidr")
	}
	return nil
}
