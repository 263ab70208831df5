package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_categories.yaml
var defaultRegistryYAML []byte

// Category - основная категория со списком подкатегорий.
type Category struct {
	Name          string   `yaml:"name" json:"name"`
	Subcategories []string `yaml:"subcategories" json:"subcategories"`
}

type registryFile struct {
	Categories []Category `yaml:"categories"`
}

// Registry - неизменяемый реестр категорий, безопасен для конкурентного чтения.
type Registry struct {
	categories []Category
	index      map[string]map[string]struct{}
}

// NewRegistry строит реестр из списка категорий.
func NewRegistry(categories []Category) (*Registry, error) {
	r := &Registry{
		categories: make([]Category, 0, len(categories)),
		index:      make(map[string]map[string]struct{}, len(categories)),
	}

	for _, c := range categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("catalog: пустое название категории")
		}
		if _, dup := r.index[name]; dup {
			return nil, fmt.Errorf("catalog: категория %q указана дважды", name)
		}

		subs := make(map[string]struct{}, len(c.Subcategories))
		ordered := make([]string, 0, len(c.Subcategories))
		for _, s := range c.Subcategories {
			s = strings.TrimSpace(s)
			if s == "" {
				return nil, fmt.Errorf("catalog: пустая подкатегория в %q", name)
			}
			if _, dup := subs[s]; dup {
				continue
			}
			subs[s] = struct{}{}
			ordered = append(ordered, s)
		}

		r.index[name] = subs
		r.categories = append(r.categories, Category{Name: name, Subcategories: ordered})
	}

	return r, nil
}

// Parse читает реестр из YAML.
func Parse(data []byte) (*Registry, error) {
	var f registryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: не удалось разобрать реестр: %w", err)
	}
	if len(f.Categories) == 0 {
		return nil, fmt.Errorf("catalog: реестр пуст")
	}
	return NewRegistry(f.Categories)
}

// Load читает реестр из файла; пустой путь означает встроенный реестр.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: не удалось прочитать %s: %w", path, err)
	}
	return Parse(data)
}

// Default возвращает встроенный реестр.
func Default() (*Registry, error) {
	return Parse(defaultRegistryYAML)
}

// Categories возвращает копию реестра в исходном порядке.
func (r *Registry) Categories() []Category {
	out := make([]Category, len(r.categories))
	for i, c := range r.categories {
		out[i] = Category{Name: c.Name, Subcategories: append([]string(nil), c.Subcategories...)}
	}
	return out
}

// Primaries возвращает основные категории по порядку.
func (r *Registry) Primaries() []string {
	out := make([]string, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, c.Name)
	}
	return out
}

// Subcategories возвращает подкатегории основной категории или nil.
func (r *Registry) Subcategories(primary string) []string {
	for _, c := range r.categories {
		if c.Name == primary {
			return append([]string(nil), c.Subcategories...)
		}
	}
	return nil
}

func (r *Registry) HasPrimary(primary string) bool {
	_, ok := r.index[primary]
	return ok
}

func (r *Registry) HasSubcategory(primary, sub string) bool {
	subs, ok := r.index[primary]
	if !ok {
		return false
	}
	_, ok = subs[sub]
	return ok
}
