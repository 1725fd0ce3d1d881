// Package sqlutil builds and validates the SQL fragments sent to remote
// endpoints. Identifiers are always double-quoted with doubled embedded
// quotes; inputs are validated before they ever reach a query string,
// since the text is executed by a server we do not control.
package sqlutil

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrEmptyIdentifier   = errors.New("identifier is empty")
	ErrInvalidIdentifier = errors.New("identifier contains invalid characters")
	ErrInvalidURI        = errors.New("invalid endpoint URI")
)

const (
	maxIdentifierLen = 255
	maxURILen        = 2048
)

// character sequences that must never appear inside an identifier, even
// quoted: statement terminators, comment markers, and control bytes.
var forbiddenSequences = []string{";", "--", "/*", "*/", "\x00", "\n", "\r", "\t"}

// QuoteIdent quotes an identifier for interpolation into SQL, doubling
// embedded double quotes.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteQualified quotes a schema-qualified table reference. An empty
// schema yields the bare table identifier.
func QuoteQualified(schema, table string) string {
	if schema == "" {
		return QuoteIdent(table)
	}
	return QuoteIdent(schema) + "." + QuoteIdent(table)
}

// ValidateIdentifier rejects names that are empty, oversized, or carry
// sequences that could break out of a quoted identifier on the remote side.
func ValidateIdentifier(name string) error {
	if name == "" {
		return ErrEmptyIdentifier
	}
	if len(name) > maxIdentifierLen {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidIdentifier, maxIdentifierLen)
	}
	for _, seq := range forbiddenSequences {
		if strings.Contains(name, seq) {
			return ErrInvalidIdentifier
		}
	}
	return nil
}

// BuildProjectedQuery constructs the SELECT sent for a scan. An empty
// column list selects every column.
func BuildProjectedQuery(schema, table string, columns []string) string {
	columnList := "*"
	if len(columns) > 0 {
		quoted := make([]string, len(columns))
		for i, col := range columns {
			quoted[i] = QuoteIdent(col)
		}
		columnList = strings.Join(quoted, ", ")
	}
	return fmt.Sprintf("SELECT %s FROM %s", columnList, QuoteQualified(schema, table))
}

// BuildSchemaQuery constructs a query whose result carries the table
// schema and no rows.
func BuildSchemaQuery(schema, table string) string {
	return fmt.Sprintf("SELECT * FROM %s WHERE 1=0", QuoteQualified(schema, table))
}

// ValidateURI checks an endpoint URI: a grpc:// or grpc+tls:// scheme, a
// host, and a sane length.
func ValidateURI(uri string) error {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return fmt.Errorf("%w: empty", ErrInvalidURI)
	}
	if len(uri) > maxURILen {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidURI, maxURILen)
	}

	var hostPart string
	switch {
	case strings.HasPrefix(uri, "grpc+tls://"):
		hostPart = strings.TrimPrefix(uri, "grpc+tls://")
	case strings.HasPrefix(uri, "grpc://"):
		hostPart = strings.TrimPrefix(uri, "grpc://")
	default:
		return fmt.Errorf("%w: scheme must be grpc:// or grpc+tls://", ErrInvalidURI)
	}
	if hostPart == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURI)
	}

	// url.Parse needs a scheme it knows to split host:port.
	parsed, err := url.Parse("http://" + hostPart)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURI, err)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURI)
	}
	return nil
}

// UseTLS reports whether the URI requests a TLS transport, and returns
// the bare host:port target for dialing.
func UseTLS(uri string) (target string, tls bool) {
	uri = strings.TrimSpace(uri)
	if rest, ok := strings.CutPrefix(uri, "grpc+tls://"); ok {
		return rest, true
	}
	if rest, ok := strings.CutPrefix(uri, "grpc://"); ok {
		return rest, false
	}
	return uri, false
}
