// Package profile manages the model endpoints a user can choose from.
package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/v0xg/resumefill/internal/ai"
	"github.com/v0xg/resumefill/internal/store"
)

// BuiltinID identifies the built-in DeepSeek profile.
const BuiltinID = "builtin-deepseek"

var (
	ErrNotFound   = errors.New("model profile not found")
	ErrBuiltin    = errors.New("the built-in model profile cannot be removed")
	ErrIncomplete = errors.New("name, base URL, API key and model are all required")
)

// Profile is one model endpoint.
type Profile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider,omitempty"`
	BaseURL  string `json:"baseUrl"`
	APIKey   string `json:"apiKey"`
	Model    string `json:"model"`
	Builtin  bool   `json:"builtin"`
}

// Builtin is the profile available before any configuration. It has no key.
func Builtin() Profile {
	return Profile{
		ID:      BuiltinID,
		Name:    "DeepSeek",
		BaseURL: "https://api.deepseek.com/v1",
		Model:   "deepseek-chat",
		Builtin: true,
	}
}

// Configured reports whether the profile can be used for a model call.
func (p Profile) Configured() bool {
	return p.BaseURL != "" && p.APIKey != "" && p.Model != ""
}

// AIConfig converts p for ai.NewProvider.
func (p Profile) AIConfig(timeout time.Duration, log *zap.Logger) ai.Config {
	return ai.Config{
		Provider: p.Provider,
		BaseURL:  p.BaseURL,
		APIKey:   p.APIKey,
		Model:    p.Model,
		Timeout:  timeout,
		Logger:   log,
	}
}

// MaskedKey shows only the last four characters of the key.
func (p Profile) MaskedKey() string {
	if p.APIKey == "" {
		return ""
	}
	r := []rune(p.APIKey)
	if len(r) <= 4 {
		return "****"
	}
	return "****" + string(r[len(r)-4:])
}

type builtinOverride struct {
	Name     string `json:"name"`
	Provider string `json:"provider,omitempty"`
	BaseURL  string `json:"baseUrl"`
	APIKey   string `json:"apiKey"`
	Model    string `json:"model"`
}

// Manager stores custom profiles, the built-in override and the active id.
type Manager struct {
	kv    store.KV
	newID func() string
}

func NewManager(kv store.KV) *Manager {
	return &Manager{kv: kv, newID: func() string { return "custom-" + uuid.NewString() }}
}

// List returns the built-in profile, with any override applied, followed by
// the custom profiles in creation order.
func (m *Manager) List(ctx context.Context) ([]Profile, error) {
	builtin := Builtin()
	var override builtinOverride
	ok, err := m.kv.Get(ctx, store.KeyBuiltinOverride, &override)
	if err != nil {
		return nil, fmt.Errorf("load built-in override: %w", err)
	}
	if ok {
		builtin.Name = override.Name
		builtin.Provider = override.Provider
		builtin.BaseURL = override.BaseURL
		builtin.APIKey = override.APIKey
		builtin.Model = override.Model
	}

	custom, err := m.custom(ctx)
	if err != nil {
		return nil, err
	}
	return append([]Profile{builtin}, custom...), nil
}

func (m *Manager) custom(ctx context.Context) ([]Profile, error) {
	var profiles []Profile
	if _, err := m.kv.Get(ctx, store.KeyModels, &profiles); err != nil {
		return nil, fmt.Errorf("load model profiles: %w", err)
	}
	return profiles, nil
}

// Get returns the profile with id.
func (m *Manager) Get(ctx context.Context, id string) (Profile, error) {
	all, err := m.List(ctx)
	if err != nil {
		return Profile{}, err
	}
	for _, p := range all {
		if p.ID == id {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// ActiveID returns the selected profile id, the built-in one by default.
func (m *Manager) ActiveID(ctx context.Context) (string, error) {
	var id string
	ok, err := m.kv.Get(ctx, store.KeyActiveModel, &id)
	if err != nil {
		return "", fmt.Errorf("load active model: %w", err)
	}
	if !ok || id == "" {
		return BuiltinID, nil
	}
	return id, nil
}

// Active returns the selected profile, falling back to the built-in one
// when the selection no longer exists.
func (m *Manager) Active(ctx context.Context) (Profile, error) {
	id, err := m.ActiveID(ctx)
	if err != nil {
		return Profile{}, err
	}
	p, err := m.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return m.Get(ctx, BuiltinID)
	}
	return p, err
}

// Use selects the profile with id.
func (m *Manager) Use(ctx context.Context, id string) error {
	if _, err := m.Get(ctx, id); err != nil {
		return err
	}
	return m.kv.Set(ctx, store.KeyActiveModel, id)
}

// Save creates p when its id is empty, replaces the custom profile with the
// same id, or stores p as the built-in override and selects it.
func (m *Manager) Save(ctx context.Context, p Profile) (Profile, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.BaseURL = strings.TrimSpace(p.BaseURL)
	p.APIKey = strings.TrimSpace(p.APIKey)
	p.Model = strings.TrimSpace(p.Model)
	p.Provider = strings.TrimSpace(p.Provider)
	if p.Name == "" || !p.Configured() {
		return Profile{}, ErrIncomplete
	}

	if p.ID == BuiltinID {
		override := builtinOverride{Name: p.Name, Provider: p.Provider, BaseURL: p.BaseURL, APIKey: p.APIKey, Model: p.Model}
		if err := m.kv.Set(ctx, store.KeyBuiltinOverride, override); err != nil {
			return Profile{}, err
		}
		if err := m.kv.Set(ctx, store.KeyActiveModel, BuiltinID); err != nil {
			return Profile{}, err
		}
		p.Builtin = true
		return p, nil
	}

	profiles, err := m.custom(ctx)
	if err != nil {
		return Profile{}, err
	}
	p.Builtin = false
	if p.ID == "" {
		p.ID = m.newID()
		profiles = append(profiles, p)
	} else {
		found := false
		for i := range profiles {
			if profiles[i].ID == p.ID {
				profiles[i] = p
				found = true
				break
			}
		}
		if !found {
			return Profile{}, fmt.Errorf("%w: %s", ErrNotFound, p.ID)
		}
	}
	if err := m.kv.Set(ctx, store.KeyModels, profiles); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Remove deletes a custom profile. Removing the active profile selects the
// built-in one.
func (m *Manager) Remove(ctx context.Context, id string) error {
	if id == BuiltinID {
		return ErrBuiltin
	}
	profiles, err := m.custom(ctx)
	if err != nil {
		return err
	}
	kept := profiles[:0]
	for _, p := range profiles {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(profiles) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := m.kv.Set(ctx, store.KeyModels, kept); err != nil {
		return err
	}

	active, err := m.ActiveID(ctx)
	if err != nil {
		return err
	}
	if active == id {
		return m.kv.Set(ctx, store.KeyActiveModel, BuiltinID)
	}
	return nil
}
