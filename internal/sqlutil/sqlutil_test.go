package sqlutil

import (
	"errors"
	"strings"
	"testing"
)

func TestQuoteIdent(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"orders", `"orders"`},
		{`my"table`, `"my""table"`},
		{"Mixed Case", `"Mixed Case"`},
	}
	for _, tt := range tests {
		if got := QuoteIdent(tt.in); got != tt.want {
			t.Errorf("QuoteIdent(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestQuoteQualified(t *testing.T) {
	if got := QuoteQualified("sales", "orders"); got != `"sales"."orders"` {
		t.Errorf("qualified = %s", got)
	}
	if got := QuoteQualified("", "orders"); got != `"orders"` {
		t.Errorf("bare = %s", got)
	}
}

func TestBuildProjectedQuery(t *testing.T) {
	got := BuildProjectedQuery("sales", "orders", []string{"id", "total"})
	want := `SELECT "id", "total" FROM "sales"."orders"`
	if got != want {
		t.Errorf("projected query = %s, want %s", got, want)
	}

	got = BuildProjectedQuery("", "orders", nil)
	if got != `SELECT * FROM "orders"` {
		t.Errorf("star query = %s", got)
	}
}

func TestBuildSchemaQuery(t *testing.T) {
	got := BuildSchemaQuery("sales", "orders")
	if got != `SELECT * FROM "sales"."orders" WHERE 1=0` {
		t.Errorf("schema query = %s", got)
	}
}

func TestValidateIdentifier(t *testing.T) {
	valid := []string{"orders", "my_table", "CamelCase", `odd"name`, "t-1"}
	for _, name := range valid {
		if err := ValidateIdentifier(name); err != nil {
			t.Errorf("ValidateIdentifier(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{
		"",
		"a;b",
		"x--comment",
		"y/*z",
		"z*/w",
		"nul\x00byte",
		"line\nbreak",
		"cr\rhere",
		"tab\there",
		strings.Repeat("a", 256),
	}
	for _, name := range invalid {
		err := ValidateIdentifier(name)
		if err == nil {
			t.Errorf("ValidateIdentifier(%q) = nil, want error", name)
			continue
		}
		if name == "" {
			if !errors.Is(err, ErrEmptyIdentifier) {
				t.Errorf("empty name error = %v, want ErrEmptyIdentifier", err)
			}
		} else if !errors.Is(err, ErrInvalidIdentifier) {
			t.Errorf("ValidateIdentifier(%q) = %v, want ErrInvalidIdentifier", name, err)
		}
	}
}

func TestValidateURI(t *testing.T) {
	valid := []string{
		"grpc://localhost:31337",
		"grpc+tls://flight.example.com:443",
		" grpc://host:1 ",
	}
	for _, uri := range valid {
		if err := ValidateURI(uri); err != nil {
			t.Errorf("ValidateURI(%q) = %v, want nil", uri, err)
		}
	}

	invalid := []string{
		"",
		"http://localhost:31337",
		"grpc://",
		"localhost:31337",
		"grpc://" + strings.Repeat("h", 2048),
	}
	for _, uri := range invalid {
		if err := ValidateURI(uri); !errors.Is(err, ErrInvalidURI) {
			t.Errorf("ValidateURI(%q) = %v, want ErrInvalidURI", uri, err)
		}
	}
}

func TestUseTLS(t *testing.T) {
	target, tls := UseTLS("grpc+tls://host:443")
	if target != "host:443" || !tls {
		t.Errorf("grpc+tls: (%s, %v)", target, tls)
	}
	target, tls = UseTLS("grpc://host:31337")
	if target != "host:31337" || tls {
		t.Errorf("grpc: (%s, %v)", target, tls)
	}
}
