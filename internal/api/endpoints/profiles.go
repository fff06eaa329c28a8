// Package endpoints maps feed queries onto the URL layout of a particular
// post API. Layouts are described by named profiles in TOML.
package endpoints

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed profiles.toml
var profilesTOML []byte

// Kind identifies which endpoint a page request used.
type Kind int

const (
	KindList Kind = iota
	KindSearch
	KindTag
)

func (k Kind) String() string {
	switch k {
	case KindSearch:
		return "search"
	case KindTag:
		return "tag"
	default:
		return "list"
	}
}

type Profile struct {
	Description string   `toml:"description"`
	List        string   `toml:"list"`
	Search      string   `toml:"search"`
	Tag         string   `toml:"tag"`
	Item        string   `toml:"item"`
	SearchParam string   `toml:"search_param"`
	LimitParam  string   `toml:"limit_param"`
	SkipParam   string   `toml:"skip_param"`
	Select      []string `toml:"select,omitempty"`
}

type profilesFile struct {
	Profiles map[string]Profile `toml:"profiles"`
}

// Registry holds the built-in profiles merged with user overrides.
type Registry struct {
	profiles map[string]Profile
}

// NewRegistry parses the embedded profiles and then each existing file in
// userPaths, later files replacing earlier profiles of the same name.
func NewRegistry(userPaths ...string) (*Registry, error) {
	var builtin profilesFile
	if err := toml.Unmarshal(profilesTOML, &builtin); err != nil {
		return nil, fmt.Errorf("parsing profiles.toml: %w", err)
	}

	r := &Registry{profiles: builtin.Profiles}

	for _, path := range userPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		var user profilesFile
		if err := toml.Unmarshal(data, &user); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		for name, p := range user.Profiles {
			r.profiles[name] = p
		}
	}

	return r, nil
}

// Get returns the named profile after filling unset parameter names with
// the dummyjson defaults.
func (r *Registry) Get(name string) (Profile, error) {
	p, ok := r.profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown endpoint profile %q (have %s)", name, strings.Join(r.Names(), ", "))
	}
	p = p.withDefaults()
	if err := p.Validate(); err != nil {
		return Profile{}, fmt.Errorf("profile %q: %w", name, err)
	}
	return p, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (p Profile) withDefaults() Profile {
	if p.SearchParam == "" {
		p.SearchParam = "q"
	}
	if p.LimitParam == "" {
		p.LimitParam = "limit"
	}
	if p.SkipParam == "" {
		p.SkipParam = "skip"
	}
	return p
}

func (p Profile) Validate() error {
	for field, path := range map[string]string{
		"list":   p.List,
		"search": p.Search,
		"tag":    p.Tag,
		"item":   p.Item,
	} {
		if !strings.HasPrefix(path, "/") {
			return fmt.Errorf("%s path must start with /, got %q", field, path)
		}
	}
	if !strings.Contains(p.Tag, "{tag}") {
		return fmt.Errorf("tag path must contain {tag}")
	}
	if !strings.Contains(p.Item, "{id}") {
		return fmt.Errorf("item path must contain {id}")
	}
	return nil
}

// PageURL builds the URL for one page. A non-empty trimmed term wins over
// the tag; with neither the list endpoint is used.
func (p Profile) PageURL(base, term, tag string, offset, limit int) (string, Kind) {
	q := url.Values{}
	q.Set(p.LimitParam, strconv.Itoa(limit))
	q.Set(p.SkipParam, strconv.Itoa(offset))
	if len(p.Select) > 0 {
		q.Set("select", strings.Join(p.Select, ","))
	}

	var (
		path string
		kind Kind
	)
	switch term = strings.TrimSpace(term); {
	case term != "":
		path, kind = p.Search, KindSearch
		q.Set(p.SearchParam, term)
	case tag != "":
		path, kind = strings.ReplaceAll(p.Tag, "{tag}", url.PathEscape(tag)), KindTag
	default:
		path, kind = p.List, KindList
	}

	return strings.TrimRight(base, "/") + path + "?" + q.Encode(), kind
}

func (p Profile) ItemURL(base string, id int) string {
	return strings.TrimRight(base, "/") + strings.ReplaceAll(p.Item, "{id}", strconv.Itoa(id))
}
