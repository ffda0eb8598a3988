package validator

import (
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

var (
	validate  *validator.Validate
	sanitizer *bluemonday.Policy
	strict    *bluemonday.Policy
	initOnce  sync.Once

	sectionTypePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)
	spacePattern       = regexp.MustCompile(`\s+`)
)

// Init builds the validators and sanitizer policies. It is safe to call more than once.
func Init() {
	initOnce.Do(func() {
		validate = validator.New()

		sanitizer = bluemonday.UGCPolicy()
		strict = bluemonday.StrictPolicy()

		registerCustomValidations(validate)

		if engine, ok := binding.Validator.Engine().(*validator.Validate); ok {
			registerCustomValidations(engine)
		}
	})
}

func registerCustomValidations(v *validator.Validate) {
	v.RegisterValidation("section_type", validateSectionType)
	v.RegisterValidation("no_html", validateNoHTML)
}

func Validate(s interface{}) error {
	Init()
	return validate.Struct(s)
}

// SanitizeHTML keeps user-generated markup such as links and emphasis and strips scripts,
// handlers and styles.
func SanitizeHTML(html string) string {
	Init()
	return sanitizer.Sanitize(html)
}

// SanitizeString removes all markup.
func SanitizeString(s string) string {
	Init()
	return strict.Sanitize(s)
}

// IsSectionType reports whether s is a well-formed section type id.
func IsSectionType(s string) bool {
	return sectionTypePattern.MatchString(s)
}

func validateSectionType(fl validator.FieldLevel) bool {
	return IsSectionType(fl.Field().String())
}

func validateNoHTML(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return !strings.Contains(value, "<") && !strings.Contains(value, ">")
}

// NormalizeSpaces collapses runs of whitespace into single spaces.
func NormalizeSpaces(s string) string {
	return spacePattern.ReplaceAllString(s, " ")
}
