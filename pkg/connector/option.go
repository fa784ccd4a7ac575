package connector

import "fmt"

// GetOption renders a single CLI flag from a name and an arbitrary value,
// for use by CLI-wrapping connectors (Helm install/uninstall in
// particular). Long-form flags (name longer than one character) get a
// double dash.
func GetOption(name string, value any) string {
	flag := "-" + name
	if len(name) > 1 {
		flag = "--" + name
	}

	switch v := value.(type) {
	case nil:
		return ""
	case bool:
		if v {
			return flag + " "
		}
		return ""
	case string:
		return fmt.Sprintf(`%s "%s" `, flag, v)
	case []string:
		var out string
		for _, item := range v {
			out += fmt.Sprintf(`%s "%s" `, flag, item)
		}
		return out
	default:
		return fmt.Sprintf(`%s "%v" `, flag, v)
	}
}
