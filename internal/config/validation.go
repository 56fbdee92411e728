package config

import (
	"errors"
	"net/url"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/text/encoding/htmlindex"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// Validate checks the settings after defaults have been applied.
func (s *Settings) Validate() error {
	err := validation.Errors{
		"site": validation.ValidateStruct(&s.Site,
			validation.Field(&s.Site.WebRoot, validation.Required, validation.By(absoluteHTTPURL)),
			validation.Field(&s.Site.ContentDir, validation.Required),
			validation.Field(&s.Site.TemplateDir, validation.Required),
			validation.Field(&s.Site.OutputDir, validation.Required),
			validation.Field(&s.Site.PostsPerPage, validation.Min(1)),
			validation.Field(&s.Site.Charset, validation.By(knownCharset)),
		),
		"build": validation.ValidateStruct(&s.Build,
			validation.Field(&s.Build.Workers, validation.Min(1)),
			validation.Field(&s.Build.FeedLimit, validation.Min(1)),
			validation.Field(&s.Build.FeedTimezone, validation.By(loadableZone)),
			validation.Field(&s.Build.SlugConflicts, validation.In(SlugConflictWarn, SlugConflictError)),
		),
		"watch": validation.ValidateStruct(&s.Watch,
			validation.Field(&s.Watch.Debounce, validation.By(nonNegativeDuration)),
			validation.Field(&s.Watch.RebuildInterval, validation.By(nonNegativeDuration)),
		),
	}.Filter()
	if err != nil {
		return ferrors.ValidationError("invalid settings").WithCause(err).Build()
	}
	return nil
}

func absoluteHTTPURL(value any) error {
	raw, _ := value.(string)
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return errors.New("must be a valid URL")
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("must be an absolute http(s) URL")
	}
	return nil
}

func knownCharset(value any) error {
	name, _ := value.(string)
	if _, err := htmlindex.Get(name); err != nil {
		return errors.New("unsupported charset")
	}
	return nil
}

func loadableZone(value any) error {
	name, _ := value.(string)
	if _, err := time.LoadLocation(name); err != nil {
		return errors.New("unknown time zone")
	}
	return nil
}

func nonNegativeDuration(value any) error {
	if d, ok := value.(Duration); ok && d < 0 {
		return errors.New("must not be negative")
	}
	return nil
}
