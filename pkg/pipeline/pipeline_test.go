package pipeline

import (
	"strings"
	"testing"

	"github.com/matzehuels/gitnetwork/pkg/errors"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"text", false},
		{"svg", false},
		{"dot", false},
		{"json", false},
		{"png", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s, want INVALID_FORMAT", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "text"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsValidateForFetch(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"missing repo", Options{}, errors.ErrCodeInvalidInput},
		{"bad ref", Options{Repo: ".", Ref: "-rf"}, errors.ErrCodeInvalidRef},
		{"bad target", Options{Repo: ".", Target: "a b"}, errors.ErrCodeInvalidInput},
		{"bad primary ref", Options{Repo: ".", PrimaryRef: "main..x"}, errors.ErrCodeInvalidRef},
		{"negative window", Options{Repo: ".", MaxCommits: -1}, errors.ErrCodeInvalidInput},
		{"valid", Options{Repo: ".", Ref: "main", Target: "abc1234", PrimaryRef: "main"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForFetch()
			if tt.code == "" {
				if err != nil {
					t.Errorf("ValidateForFetch() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("ValidateForFetch() = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Repo: "."}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}
	maxCommits := opts.MaxCommits
	formats := strings.Join(opts.Formats, ",")

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}
	if opts.MaxCommits != maxCommits {
		t.Error("MaxCommits changed on second call")
	}
	if got := strings.Join(opts.Formats, ","); got != formats {
		t.Errorf("Formats changed on second call: %s", got)
	}
	if opts.Logger == nil {
		t.Error("Logger default not set")
	}
}

func TestSetLayoutDefaults(t *testing.T) {
	opts := Options{}
	opts.SetLayoutDefaults()

	if opts.MaxCommits != DefaultMaxCommits {
		t.Errorf("MaxCommits should be %d, got %d", DefaultMaxCommits, opts.MaxCommits)
	}

	opts = Options{MaxCommits: 20}
	opts.SetLayoutDefaults()
	if opts.MaxCommits != 20 {
		t.Errorf("MaxCommits overwritten: %d", opts.MaxCommits)
	}
}

func TestSetRenderDefaults(t *testing.T) {
	opts := Options{}
	opts.SetRenderDefaults()

	if len(opts.Formats) != 1 || opts.Formats[0] != DefaultFormat {
		t.Errorf("Formats should be [%s], got %v", DefaultFormat, opts.Formats)
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{Color: true, Detailed: true, Graphviz: true}

	if k := opts.ArtifactKeyOpts("text"); !k.Color || k.Detailed || k.Graphviz {
		t.Errorf("text key opts = %+v", k)
	}
	if k := opts.ArtifactKeyOpts("svg"); k.Color || !k.Detailed || !k.Graphviz {
		t.Errorf("svg key opts = %+v", k)
	}
	if k := opts.ArtifactKeyOpts("json"); k.Color || k.Detailed || k.Graphviz {
		t.Errorf("json key opts = %+v", k)
	}
}
