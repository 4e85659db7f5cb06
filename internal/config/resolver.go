package config

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sync"

	"golang.org/x/text/language"
)

// Kind constrains the dynamic type of a configuration value.
type Kind int

const (
	// KindAny accepts any value type.
	KindAny Kind = iota
	// KindString requires a string value.
	KindString
	// KindBool requires a boolean value.
	KindBool
	// KindInt requires an integer value.
	KindInt
	// KindFloat requires a floating-point value (integers are accepted
	// and widened, matching YAML's numeric decoding).
	KindFloat
)

// String returns the kind's name for error messages.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "any"
	}
}

// verifier accumulates the constraints supplied at a lookup site.
// All supplied constraints must hold simultaneously.
type verifier struct {
	kind    Kind
	pattern string
	choices []any
}

// VerifyOption adds a constraint to a Resolver lookup.
type VerifyOption func(*verifier)

// VerifyType requires the value to have the given kind.
func VerifyType(k Kind) VerifyOption {
	return func(v *verifier) {
		v.kind = k
	}
}

// VerifyPattern requires the value to fully match the regular
// expression. A pattern can only meaningfully apply to text, so this
// forces the type constraint to string regardless of VerifyType.
func VerifyPattern(expr string) VerifyOption {
	return func(v *verifier) {
		v.pattern = expr
	}
}

// VerifyChoices requires the value to be one of the given values.
func VerifyChoices(choices ...any) VerifyOption {
	return func(v *verifier) {
		v.choices = choices
	}
}

// Resolver looks up per-module configuration options across the flag
// override layer and the file layer, with verification.
//
// A Resolver is read-mostly and safe for concurrent use by all checker
// tasks; its only mutable state is the compiled pattern cache, which is
// race-safe.
type Resolver struct {
	// flags is the CLI override layer, keyed by owner then option key.
	flags map[string]map[string]any

	// file is the configuration file layer.
	file *File

	// patterns caches compiled verification regexps. Multiple checkers
	// may trigger the first compilation concurrently.
	patterns sync.Map // string -> *regexp.Regexp

	logger *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithResolverLogger sets the logger used for default-fallback notices.
func WithResolverLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a Resolver over the given file configuration.
// A nil file is treated as empty.
func NewResolver(file *File, opts ...ResolverOption) *Resolver {
	if file == nil {
		file = &File{
			Global:  make(map[string]any),
			Modules: make(map[string]map[string]any),
		}
	}
	r := &Resolver{
		flags: make(map[string]map[string]any),
		file:  file,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// SetFlag records a command-line override for the given owner and key.
// An empty owner targets the orchestrator's global options.
func (r *Resolver) SetFlag(owner, key string, value any) {
	owner = r.canonicalOwner(owner)
	if r.flags[owner] == nil {
		r.flags[owner] = make(map[string]any)
	}
	r.flags[owner][key] = value
}

// Get returns the value of the option for the given owner, checking the
// flag layer before the file layer. It returns an OptionNotFoundError
// when the key exists in neither layer and a VerificationError when the
// found value fails a supplied constraint.
func (r *Resolver) Get(owner, key string, opts ...VerifyOption) (any, error) {
	owner = r.canonicalOwner(owner)

	var v verifier
	for _, opt := range opts {
		opt(&v)
	}
	if v.pattern != "" {
		v.kind = KindString
	}

	if value, ok := r.flags[owner][key]; ok {
		if err := r.verify(owner, key, value, &v); err != nil {
			return nil, err
		}
		return value, nil
	}

	value, ok := r.fileValue(owner, key)
	if !ok {
		return nil, &OptionNotFoundError{Module: owner, Key: key}
	}
	if err := r.verify(owner, key, value, &v); err != nil {
		return nil, err
	}
	return value, nil
}

// GetOrDefault is like Get but returns def when the option is missing
// or fails verification. Both fallbacks are logged, the latter as a
// warning since the configuration holds an invalid value.
func (r *Resolver) GetOrDefault(owner, key string, def any, opts ...VerifyOption) any {
	value, err := r.Get(owner, key, opts...)
	if err == nil {
		return value
	}

	var notFound *OptionNotFoundError
	if errors.As(err, &notFound) {
		r.logger.Debug("config option not set, using default",
			"module", r.canonicalOwner(owner),
			"key", key,
			"default", def,
		)
		return def
	}

	r.logger.Warn("config option invalid, using default",
		"module", r.canonicalOwner(owner),
		"key", key,
		"default", def,
		"error", err,
	)
	return def
}

// String returns the option as a string, or def when missing or not a
// string.
func (r *Resolver) String(owner, key, def string, opts ...VerifyOption) string {
	opts = append(opts, VerifyType(KindString))
	if s, ok := r.GetOrDefault(owner, key, def, opts...).(string); ok {
		return s
	}
	return def
}

// Bool returns the option as a bool, or def when missing or not a bool.
func (r *Resolver) Bool(owner, key string, def bool) bool {
	if b, ok := r.GetOrDefault(owner, key, def, VerifyType(KindBool)).(bool); ok {
		return b
	}
	return def
}

// Int returns the option as an int, or def when missing or not an int.
func (r *Resolver) Int(owner, key string, def int) int {
	value := r.GetOrDefault(owner, key, def, VerifyType(KindInt))
	switch n := value.(type) {
	case int:
		return n
	case int64:
		return int(n)
	default:
		return def
	}
}

// Language returns the configured document language as a valid BCP 47
// tag. An unparsable tag falls back to DefaultLanguage with a warning.
func (r *Resolver) Language() string {
	lang := r.String(GlobalOwner, "language", DefaultLanguage)
	if _, err := language.Parse(lang); err != nil {
		r.logger.Warn("configured language is not a valid BCP 47 tag, using default",
			"language", lang,
			"default", DefaultLanguage,
			"error", err,
		)
		return DefaultLanguage
	}
	return lang
}

// canonicalOwner maps the empty owner to the orchestrator's own scope.
func (r *Resolver) canonicalOwner(owner string) string {
	if owner == "" {
		return GlobalOwner
	}
	return owner
}

// fileValue looks up a key in the file layer.
func (r *Resolver) fileValue(owner, key string) (any, bool) {
	if owner == GlobalOwner {
		value, ok := r.file.Global[key]
		return value, ok
	}
	module, ok := r.file.Modules[owner]
	if !ok {
		return nil, false
	}
	value, ok := module[key]
	return value, ok
}

// verify checks the value against all supplied constraints.
func (r *Resolver) verify(owner, key string, value any, v *verifier) error {
	if err := verifyKind(value, v.kind); err != nil {
		return &VerificationError{Module: owner, Key: key, Reason: err.Error()}
	}

	if v.pattern != "" {
		re, err := r.compilePattern(v.pattern)
		if err != nil {
			return &VerificationError{Module: owner, Key: key, Reason: err.Error()}
		}
		s := value.(string) // kind was forced to string above
		if !re.MatchString(s) {
			return &VerificationError{
				Module: owner,
				Key:    key,
				Reason: fmt.Sprintf("value %q does not match pattern %q", s, v.pattern),
			}
		}
	}

	if v.choices != nil {
		found := false
		for _, choice := range v.choices {
			if value == choice {
				found = true
				break
			}
		}
		if !found {
			return &VerificationError{
				Module: owner,
				Key:    key,
				Reason: fmt.Sprintf("value %v is not one of the allowed choices %v", value, v.choices),
			}
		}
	}

	return nil
}

// compilePattern returns the compiled, fully-anchored form of expr,
// caching compilations across lookups.
func (r *Resolver) compilePattern(expr string) (*regexp.Regexp, error) {
	if cached, ok := r.patterns.Load(expr); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile("^(?:" + expr + ")$")
	if err != nil {
		return nil, fmt.Errorf("invalid verification pattern %q: %w", expr, err)
	}
	r.patterns.Store(expr, re)
	return re, nil
}

// verifyKind checks a value's dynamic type against the constraint.
func verifyKind(value any, kind Kind) error {
	switch kind {
	case KindAny:
		return nil
	case KindString:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("value %v has type %T, expected string", value, value)
		}
	case KindBool:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("value %v has type %T, expected bool", value, value)
		}
	case KindInt:
		switch value.(type) {
		case int, int64:
		default:
			return fmt.Errorf("value %v has type %T, expected int", value, value)
		}
	case KindFloat:
		switch value.(type) {
		case float64, float32, int, int64:
		default:
			return fmt.Errorf("value %v has type %T, expected float", value, value)
		}
	}
	return nil
}
