package eventlog

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/khanghh/phishsoc/params"
	"github.com/spf13/cast"
	"github.com/valyala/bytebufferpool"
)

const (
	timestampLayout = "2006-01-02 15:04:05"
	nullValue       = "null"
	fieldSeparator  = " | "
	truncatedSuffix = "...[truncated]"
)

var lineBreakReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

func formatValue(v any) string {
	if v == nil {
		return nullValue
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		s = fmt.Sprint(v)
	}
	return truncateValue(lineBreakReplacer.Replace(s), params.LogMaxValueLength)
}

// truncateValue cuts s to at most limit bytes on a rune boundary, marking
// the cut with truncatedSuffix.
func truncateValue(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit - len(truncatedSuffix)
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + truncatedSuffix
}

// renderFields converts fields to strings. Missing schema fields are
// rendered as "null".
func renderFields(category Category, fields Fields) map[string]string {
	rendered := make(map[string]string, len(fields)+len(schemas[category]))
	for _, f := range schemas[category] {
		rendered[f.key] = nullValue
	}
	for k, v := range fields {
		rendered[truncateValue(lineBreakReplacer.Replace(k), params.LogMaxValueLength)] = formatValue(v)
	}
	return rendered
}

// formatLine renders one newline terminated log line:
//
//	[2006-01-02 15:04:05] CATEGORY | Label: value | Label: value
//
// Schema fields come first in schema order, unknown keys follow sorted.
func formatLine(ts time.Time, category Category, rendered map[string]string) []byte {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	buf.WriteString("[")
	buf.WriteString(ts.Format(timestampLayout))
	buf.WriteString("] ")
	buf.WriteString(string(category))

	schema := schemas[category]
	known := make(map[string]struct{}, len(schema))
	for _, f := range schema {
		known[f.key] = struct{}{}
		buf.WriteString(fieldSeparator)
		buf.WriteString(f.label)
		buf.WriteString(": ")
		buf.WriteString(rendered[f.key])
	}

	var extra []string
	for k := range rendered {
		if _, ok := known[k]; !ok {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		buf.WriteString(fieldSeparator)
		buf.WriteString(k)
		buf.WriteString(": ")
		buf.WriteString(rendered[k])
	}
	buf.WriteString("\n")

	line := make([]byte, buf.Len())
	copy(line, buf.B)
	return line
}

// formatBytes renders a byte count as "%.2f <unit>" in base 1024.
func formatBytes(n int64) string {
	if n <= 0 {
		return "0 B"
	}
	units := []string{"B", "KB", "MB", "GB"}
	value := float64(n)
	i := 0
	for value >= 1024 && i < len(units)-1 {
		value /= 1024
		i++
	}
	return fmt.Sprintf("%.2f %s", value, units[i])
}
