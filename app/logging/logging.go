// Package logging configures the process-wide logrus logger and keeps
// credentials out of log output.
package logging

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	Redaction      = "***"
	FieldSeparator = ";"
)

// PIIFields are redacted from structured fields and key=value messages.
var PIIFields = []string{"email", "password", "session_id", "reset_token", "authorization", "hashed_password"}

// Configure sets the global log level and formatter. format is "json" or
// "text"; both are wrapped in a RedactingFormatter.
func Configure(level, format string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var inner logrus.Formatter
	switch strings.ToLower(format) {
	case "", "json":
		inner = &logrus.JSONFormatter{}
	case "text":
		inner = &logrus.TextFormatter{FullTimestamp: true}
	default:
		return fmt.Errorf("invalid log format %q", format)
	}

	logrus.SetLevel(lvl)
	logrus.SetFormatter(NewRedactingFormatter(inner, PIIFields))
	return nil
}

// RedactingFormatter masks the values of Fields in entry data and in the
// message before delegating to Inner.
type RedactingFormatter struct {
	Inner     logrus.Formatter
	Fields    []string
	Separator string
}

func NewRedactingFormatter(inner logrus.Formatter, fields []string) *RedactingFormatter {
	return &RedactingFormatter{
		Inner:     inner,
		Fields:    fields,
		Separator: FieldSeparator,
	}
}

func (f *RedactingFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	clone := *entry
	clone.Data = make(logrus.Fields, len(entry.Data))
	for k, v := range entry.Data {
		if f.isSensitive(k) {
			v = Redaction
		}
		clone.Data[k] = v
	}
	clone.Message = FilterDatum(f.Fields, Redaction, entry.Message, f.Separator)
	return f.Inner.Format(&clone)
}

func (f *RedactingFormatter) isSensitive(key string) bool {
	for _, field := range f.Fields {
		if strings.EqualFold(field, key) {
			return true
		}
	}
	return false
}

// FilterDatum replaces the value of every field=value pair in message whose
// key is in fields. A pair ends at the next separator.
func FilterDatum(fields []string, redaction, message, separator string) string {
	for _, field := range fields {
		re := regexp.MustCompile(regexp.QuoteMeta(field) + "=.*?" + regexp.QuoteMeta(separator))
		message = re.ReplaceAllLiteralString(message, field+"="+redaction+separator)
	}
	return message
}
