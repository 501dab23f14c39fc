package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/mcpar-land/quill/internal/markdown"
	"github.com/mcpar-land/quill/internal/site"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Site     SiteConfig        `yaml:"site"`
	Paths    PathsConfig       `yaml:"paths"`
	Markdown MarkdownConfig    `yaml:"markdown"`
	Feed     FeedConfig        `yaml:"feed"`
	Archive  ArchiveConfig     `yaml:"archive"`
	Serve    ServeConfig       `yaml:"serve"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	for _, v := range []validation.Validatable{&c.App, &c.Site, &c.Paths, &c.Markdown, &c.Feed, &c.Archive, &c.Serve} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SiteOptions maps the configuration onto the site builder options.
func (c *Config) SiteOptions(liveReload bool) site.Options {
	links := make([]site.Link, len(c.Site.Links))
	for i, l := range c.Site.Links {
		links[i] = site.Link{Name: l.Name, URL: l.URL}
	}
	return site.Options{
		Title:        c.Site.Title,
		Description:  c.Site.Description,
		Intro:        c.Site.Intro,
		BaseURL:      c.Site.BaseURL,
		Links:        links,
		HomePosts:    c.Site.HomePosts,
		FeedMaxItems: c.Feed.MaxItems,
		Archive:      c.Archive.Enabled,
		ArchiveName:  c.Archive.Name,
		StylesPath:   c.Paths.Styles,
		RobotsPath:   c.Paths.Robots,
		StaticDir:    c.Paths.Static,
		LiveReload:   liveReload,
	}
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration for serve mode.
type HTTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

var httpURL = regexp.MustCompile(`^https?://[^\s/]+`)

// SiteConfig describes the published site.
type SiteConfig struct {
	Title       string       `yaml:"title"`
	Description string       `yaml:"description"`
	Intro       string       `yaml:"intro"`
	BaseURL     string       `yaml:"base_url"`
	HomePosts   int          `yaml:"home_posts"`
	Links       []LinkConfig `yaml:"links"`
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Title, validation.Required),
		validation.Field(&c.BaseURL, validation.Match(httpURL)),
		validation.Field(&c.HomePosts, validation.Required, validation.Min(1)),
		validation.Field(&c.Links),
	)
}

// LinkConfig is an extra navigation link.
type LinkConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Validate validates a navigation link.
func (c LinkConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.URL, validation.Required),
	)
}

// PathsConfig holds the input and output locations.
type PathsConfig struct {
	Posts  string `yaml:"posts"`
	Static string `yaml:"static"`
	Styles string `yaml:"styles"`
	Robots string `yaml:"robots"`
	Output string `yaml:"output"`
	// Cache is the SQLite file holding rendered HTML and the search index.
	Cache string `yaml:"cache"`
}

// Validate validates the paths configuration.
func (c *PathsConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Posts, validation.Required),
		validation.Field(&c.Output, validation.Required),
		validation.Field(&c.Cache, validation.Required),
	); err != nil {
		return err
	}
	if c.Posts == c.Output {
		return errors.New("paths: posts and output must differ")
	}
	return nil
}

// MarkdownConfig configures rendering.
type MarkdownConfig struct {
	HighlightTheme string `yaml:"highlight_theme"`
}

// Validate validates the markdown configuration.
func (c *MarkdownConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.HighlightTheme, validation.Required, validation.By(func(v any) error {
			if !markdown.ThemeExists(v.(string)) {
				return fmt.Errorf("unknown highlight theme %q", v)
			}
			return nil
		})),
	)
}

// FeedConfig configures feed.xml.
type FeedConfig struct {
	MaxItems int `yaml:"max_items"`
}

// Validate validates the feed configuration.
func (c *FeedConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxItems, validation.Required, validation.Min(1)),
	)
}

// ArchiveConfig controls the downloadable zip of the site.
type ArchiveConfig struct {
	Enabled bool   `yaml:"enabled"`
	Name    string `yaml:"name"`
}

// Validate validates the archive configuration.
func (c *ArchiveConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.When(c.Enabled, validation.Required)),
	)
}

// ServeConfig holds preview server settings.
type ServeConfig struct {
	Auth     AuthConfig    `yaml:"auth"`
	Debounce time.Duration `yaml:"debounce"`
}

// Validate validates the serve configuration.
func (c *ServeConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
	); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// AuthConfig holds authentication configuration for the /api routes.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local preview.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Host: "127.0.0.1",
				Port: 8080,
			},
		},
		Site: SiteConfig{
			Title:     "My Blog",
			HomePosts: 3,
		},
		Paths: PathsConfig{
			Posts:  "./posts",
			Static: "./static",
			Styles: "./styles.css",
			Robots: "./robots.txt",
			Output: "./public",
			Cache:  "./.quill-cache.db",
		},
		Markdown: MarkdownConfig{
			HighlightTheme: markdown.DefaultTheme,
		},
		Feed: FeedConfig{
			MaxItems: 10,
		},
		Archive: ArchiveConfig{
			Enabled: true,
			Name:    "site.zip",
		},
		Serve: ServeConfig{
			Auth:     AuthConfig{Mode: AuthModeDisabled},
			Debounce: 200 * time.Millisecond,
		},
	}
}
