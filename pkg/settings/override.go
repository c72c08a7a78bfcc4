package settings

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// OverrideLexer tokenizes override expressions such as
//
//	shapes.cell.fill = "#aabbcc"; displayNames = false; scaleStepFactor = 1.25
var OverrideLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[\s\t\n\r]+`},
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},
	{Name: "Color", Pattern: `#[0-9a-fA-F]+`},
	{Name: "Number", Pattern: `[-+]?[0-9]+(\.[0-9]+)?`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_-]*`},
	{Name: "Dot", Pattern: `\.`},
	{Name: "Equals", Pattern: `=`},
	{Name: "Semicolon", Pattern: `;`},
})

// Overrides is a parsed list of assignments
type Overrides struct {
	Assignments []*Assignment `( @@ Semicolon? )*`
}

// Assignment sets one setting, addressed by its JSON key path
type Assignment struct {
	Pos   lexer.Position
	Path  []string `@Ident ( Dot @Ident )*`
	Value *Value   `Equals @@`
}

// Value is the right-hand side of an assignment
type Value struct {
	Number *float64 `  @Number`
	Quoted *string  `| @String`
	Color  *string  `| @Color`
	Word   *string  `| @Ident`
}

func (v *Value) String() string {
	switch {
	case v.Number != nil:
		return fmt.Sprint(*v.Number)
	case v.Quoted != nil:
		return *v.Quoted
	case v.Color != nil:
		return *v.Color
	case v.Word != nil:
		return *v.Word
	}
	return ""
}

var overrideParser = participle.MustBuild[Overrides](
	participle.Lexer(OverrideLexer),
	participle.Elide("Whitespace"),
	participle.Unquote("String"),
	participle.UseLookahead(2),
)

// ParseOverrides parses a semicolon separated list of "path = value" assignments.
func ParseOverrides(input string) (*Overrides, error) {
	o, err := overrideParser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("settings: parse error: %w", err)
	}
	return o, nil
}

// ApplyOverrides parses input and returns a copy of s with the assignments
// applied. s itself is not modified. The result is validated.
func ApplyOverrides(s *Settings, input string) (*Settings, error) {
	o, err := ParseOverrides(input)
	if err != nil {
		return nil, err
	}
	return o.Apply(s)
}

// Apply returns a copy of s with every assignment applied in order.
func (o *Overrides) Apply(s *Settings) (*Settings, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}

	for _, a := range o.Assignments {
		if err := a.apply(tree); err != nil {
			return nil, err
		}
	}

	data, err = json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	out := Default()
	if err := json.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Assignment) apply(tree map[string]any) error {
	key := strings.Join(a.Path, ".")
	path := a.Path
	// shape styles may be addressed without the "shapes." prefix
	if _, ok := tree[path[0]]; !ok {
		if shapes, ok := tree["shapes"].(map[string]any); ok {
			if _, ok := shapes[path[0]]; ok {
				path = append([]string{"shapes"}, path...)
			}
		}
	}

	node := tree
	for _, p := range path[:len(path)-1] {
		next, ok := node[p].(map[string]any)
		if !ok {
			return fmt.Errorf("settings: %s: unknown setting %q: %w", a.Pos, key, ErrInvalidSetting)
		}
		node = next
	}

	last := path[len(path)-1]
	current, ok := node[last]
	if !ok {
		return fmt.Errorf("settings: %s: unknown setting %q: %w", a.Pos, key, ErrInvalidSetting)
	}

	v := a.Value
	switch current.(type) {
	case float64:
		if v.Number == nil {
			return fmt.Errorf("settings: %s: %s expects a number, got %q: %w", a.Pos, key, v, ErrInvalidSetting)
		}
		node[last] = *v.Number
	case bool:
		if v.Word == nil || (*v.Word != "true" && *v.Word != "false") {
			return fmt.Errorf("settings: %s: %s expects true or false, got %q: %w", a.Pos, key, v, ErrInvalidSetting)
		}
		node[last] = *v.Word == "true"
	case string:
		if v.Number != nil {
			return fmt.Errorf("settings: %s: %s expects a string, got %q: %w", a.Pos, key, v, ErrInvalidSetting)
		}
		node[last] = v.String()
	default:
		return fmt.Errorf("settings: %s: %s is a group, not a value: %w", a.Pos, key, ErrInvalidSetting)
	}
	return nil
}
