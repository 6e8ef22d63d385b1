package validator

import (
	"encoding/json"
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/nulzo/prism-fanout/internal/gateway"
	"github.com/nulzo/prism-fanout/pkg/api"
)

// Validator turns raw /generate payloads into gateway requests.
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

func New() *Validator {
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")

	v := &Validator{validate: validator.New(validator.WithRequiredStructEnabled()), trans: trans}
	v.register(v.validate)
	return v
}

// InitBinding applies the same field naming and translations to gin's own
// binding engine, which validates query strings.
func (v *Validator) InitBinding() {
	if engine, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.register(engine)
	}
}

func (v *Validator) register(engine *validator.Validate) {
	engine.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	_ = en_translations.RegisterDefaultTranslations(engine, v.trans)
}

// Validate checks payload and builds the immutable request the orchestrator
// runs. The only errors it returns are *api.Error with status 400.
func (v *Validator) Validate(payload *api.GenerateRequest) (*gateway.GenerationRequest, error) {
	if payload == nil {
		return nil, api.InvalidRequest(api.ReasonInvalidBody)
	}

	req := &gateway.GenerationRequest{
		Prompt:      promptText(payload.Prompt),
		Enabled:     enabledIDs(object(payload.Toggles)),
		Credentials: mergeCredentials(object(payload.Keys), object(payload.Credentials)),
	}

	if err := v.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, api.InvalidRequest(api.ReasonInvalidBody, api.WithLog(err))
		}
		return nil, api.InvalidRequest(reasonFor(verrs), api.WithDetail(v.describe(verrs)))
	}

	return req, nil
}

// ParseError converts validation errors into field -> message, e.g. for a
// bad query string.
func (v *Validator) ParseError(err error) map[string]string {
	errMap := make(map[string]string)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errMap["body"] = "malformed payload"
		return errMap
	}
	for _, e := range verrs {
		ns := e.Namespace()
		if i := strings.Index(ns, "."); i != -1 {
			ns = ns[i+1:]
		}
		errMap[ns] = e.Translate(v.trans)
	}
	return errMap
}

func (v *Validator) describe(verrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(verrs))
	for _, e := range verrs {
		parts = append(parts, e.Translate(v.trans))
	}
	return strings.Join(parts, "; ")
}

// reasonFor picks the client reason. A prompt problem wins over an empty
// toggle set.
func reasonFor(verrs validator.ValidationErrors) string {
	for _, e := range verrs {
		if e.StructField() == "Prompt" {
			return api.ReasonPromptRequired
		}
	}
	return api.ReasonNoModelsEnabled
}

// promptText yields the trimmed prompt, or "" when it is absent or not a
// JSON string.
func promptText(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// object decodes raw as a JSON object. Absent, null and every other shape
// give nil.
func object(raw json.RawMessage) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

// enabledIDs returns the toggle keys with a truthy value, sorted.
func enabledIDs(toggles map[string]any) []string {
	ids := make([]string, 0, len(toggles))
	for id, on := range toggles {
		if id != "" && truthy(on) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	case string:
		return t != ""
	default:
		return false
	}
}

// mergeCredentials keeps non-empty string values only. Later maps win.
func mergeCredentials(sources ...map[string]any) map[string]string {
	out := make(map[string]string)
	for _, src := range sources {
		for name, raw := range src {
			if s, ok := raw.(string); ok && s != "" {
				out[name] = s
			}
		}
	}
	return out
}
