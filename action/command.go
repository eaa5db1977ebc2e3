package action

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// command renders a workflow command in the `::name key=value::message` form.
func command(name string, properties map[string]string, message string) string {
	var bld strings.Builder
	bld.WriteString("::")
	bld.WriteString(name)

	if len(properties) > 0 {
		keys := make([]string, 0, len(properties))
		for key := range properties {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		bld.WriteString(" ")
		for i, key := range keys {
			if i > 0 {
				bld.WriteString(",")
			}
			fmt.Fprintf(&bld, "%s=%s", key, escapeProperty(properties[key]))
		}
	}

	bld.WriteString("::")
	bld.WriteString(escapeData(message))
	return bld.String()
}

func issue(w io.Writer, name string, properties map[string]string, message string) {
	fmt.Fprintln(w, command(name, properties, message))
}

var (
	datareplacer = strings.NewReplacer(
		"%", "%25",
		"\r", "%0D",
		"\n", "%0A",
	)
	propertyreplacer = strings.NewReplacer(
		"%", "%25",
		"\r", "%0D",
		"\n", "%0A",
		":", "%3A",
		",", "%2C",
	)
)

func escapeData(s string) string {
	return datareplacer.Replace(s)
}

func escapeProperty(s string) string {
	return propertyreplacer.Replace(s)
}
