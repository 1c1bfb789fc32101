package external

import (
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"telegram-notifier/internal/model"
)

// TimestampLayout is appended to every notification, d.m.Y, g:i in PHP terms
const TimestampLayout = "02.01.2006, 3:04"

// marks a line break while the text goes through markup stripping and whitespace collapsing
const lineBreak = "\u2028"

var (
	// {Label:1}, {Name (First):1.3}, {Email:2:value}
	fieldTag      = regexp.MustCompile(`\{[^{}]*?:(\d+(?:\.\d+)?)(?::[^{}]*)?\}`)
	lineBreakTag  = regexp.MustCompile(`(?i)</p>|<br\s*/?>|</div>|</font>|</li>|</tr>`)
	whitespaceRun = regexp.MustCompile(`\s+`)
	lineBreakPad  = regexp.MustCompile(` ?` + lineBreak + ` ?`)
	stripPolicy   = bluemonday.StrictPolicy()
)

// ReplaceMergeTags substitutes the platform's merge tags with entry values.
// Values are HTML escaped since templates are HTML. Unknown tags are left alone.
func ReplaceMergeTags(template string, form *model.Form, entry model.Entry, now time.Time) string {
	text := fieldTag.ReplaceAllStringFunc(template, func(tag string) string {
		id := fieldTag.FindStringSubmatch(tag)[1]
		return html.EscapeString(fieldValue(form, entry, id))
	})
	return strings.NewReplacer(
		"{form_title}", html.EscapeString(form.Title),
		"{form_id}", entry["form_id"],
		"{entry_id}", html.EscapeString(entry["id"]),
		"{date_created}", html.EscapeString(entry["date_created"]),
		"{date_mdy}", now.Format("01/02/2006"),
		"{date_dmy}", now.Format("02/01/2006"),
		"{all_fields}", allFields(form, entry),
	).Replace(text)
}

// Sanitize turns rendered HTML into the plain text Telegram receives:
// block ends become line breaks, markup is stripped and whitespace collapsed.
func Sanitize(rendered string) string {
	text := strings.ReplaceAll(rendered, "&nbsp;", " ")
	text = lineBreakTag.ReplaceAllString(text, lineBreak)
	text = stripPolicy.Sanitize(text)
	text = strings.ReplaceAll(text, "\u00a0", " ")
	text = whitespaceRun.ReplaceAllString(text, " ")
	text = lineBreakPad.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}

// RenderNotification builds the final message: form title, a blank line,
// the sanitized template and the submission time
func RenderNotification(template string, form *model.Form, entry model.Entry, now time.Time) string {
	text := Sanitize(ReplaceMergeTags(template, form, entry, now))
	text += "\n" + now.Format(TimestampLayout)
	return html.EscapeString(form.Title) + "\n\n" + text
}

// a field without its own value is the space separated join of its inputs (name, address)
func fieldValue(form *model.Form, entry model.Entry, id string) string {
	if value, ok := entry[id]; ok {
		return value
	}
	for _, field := range form.Fields {
		if field.ID != id {
			continue
		}
		var parts []string
		for _, input := range field.Inputs {
			if value := entry[input.ID]; value != "" {
				parts = append(parts, value)
			}
		}
		return strings.Join(parts, " ")
	}
	return ""
}

func allFields(form *model.Form, entry model.Entry) string {
	var builder strings.Builder
	for _, field := range form.Fields {
		value := fieldValue(form, entry, field.ID)
		if value == "" {
			continue
		}
		builder.WriteString(html.EscapeString(field.Label))
		builder.WriteString(": ")
		builder.WriteString(html.EscapeString(value))
		builder.WriteString("<br/>")
	}
	return builder.String()
}
