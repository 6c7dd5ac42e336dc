package password

// Rule is one password requirement with its contribution to the strength
// score.
type Rule struct {
	Key     string
	Weight  int
	Message string
	Check   func(string) bool
}

// MinLength is the shortest password that satisfies the length rule.
const MinLength = 8

// Rules are evaluated in order by Strength. Character classes are ASCII.
var Rules = []Rule{
	{
		Key:     "minLength",
		Weight:  20,
		Message: "Password must be at least 8 characters",
		Check:   func(p string) bool { return len(p) >= MinLength },
	},
	{
		Key:     "hasUppercase",
		Weight:  20,
		Message: "Password must contain at least one uppercase letter",
		Check:   hasByte(func(c byte) bool { return c >= 'A' && c <= 'Z' }),
	},
	{
		Key:     "hasLowercase",
		Weight:  20,
		Message: "Password must contain at least one lowercase letter",
		Check:   hasByte(func(c byte) bool { return c >= 'a' && c <= 'z' }),
	},
	{
		Key:     "hasNumber",
		Weight:  20,
		Message: "Password must contain at least one number",
		Check:   hasByte(func(c byte) bool { return c >= '0' && c <= '9' }),
	},
	{
		Key:     "hasSpecial",
		Weight:  20,
		Message: "Password must contain at least one special character",
		Check:   hasByte(func(c byte) bool { return !isAlnum(c) }),
	},
}

// Score is the outcome of Strength. Failed holds the messages of the rules
// that did not pass, in rule order.
type Score struct {
	Value  int
	Failed []string
}

// Strength scores p from 0 to 100 against Rules.
func Strength(p string) Score {
	var s Score
	for _, r := range Rules {
		if r.Check(p) {
			s.Value += r.Weight
			continue
		}
		s.Failed = append(s.Failed, r.Message)
	}
	return s
}

func hasByte(pred func(byte) bool) func(string) bool {
	return func(p string) bool {
		for i := 0; i < len(p); i++ {
			if pred(p[i]) {
				return true
			}
		}
		return false
	}
}

func isAlnum(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}
