// Package template reads a workspace's dev-container template descriptor
// and rewrites its option placeholders with declared default values.
package template

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/jsonc"

	"devsmoke/pkg/actionerr"
	"devsmoke/pkg/fsutil"
	"devsmoke/pkg/logging"
)

// DescriptorName is the metadata file expected at the root of every
// template workspace.
const DescriptorName = "devcontainer-template.json"

// Descriptor is the subset of the template metadata devsmoke consumes.
type Descriptor struct {
	ID      string            `json:"id"`
	Name    string            `json:"name"`
	Options map[string]Option `json:"options"`
}

// Option declares one configurable template value.
type Option struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Default     any      `json:"default"`
	Proposals   []string `json:"proposals"`
	Enum        []string `json:"enum"`
}

// Placeholder returns the literal token for an option key as it appears in
// template files.
func Placeholder(key string) string {
	return fmt.Sprintf("${templateOption:%s}", key)
}

// LoadDescriptor parses the template descriptor inside workspaceDir. The
// descriptor may contain comments and trailing commas; both are tolerated,
// matching how dev-container tooling treats its JSON files.
func LoadDescriptor(workspaceDir string) (*Descriptor, error) {
	path := filepath.Join(workspaceDir, DescriptorName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, actionerr.New(actionerr.ReasonMissingPath, "template descriptor not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read descriptor %s: %w", path, err)
	}

	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.UseNumber()

	var desc Descriptor
	if err := dec.Decode(&desc); err != nil {
		return nil, fmt.Errorf("failed to parse descriptor %s: %w", path, err)
	}
	return &desc, nil
}

// ConfigureOptions resolves every declared option of the workspace's
// descriptor to its default value and substitutes the corresponding
// placeholder token across all files under workspaceDir. A template with
// no options is a no-op. An option with a missing or blank default is a
// classified configuration failure naming the key; options already
// substituted before the failure stay substituted.
func ConfigureOptions(workspaceDir string) error {
	logger := logging.GetLogger("template")

	desc, err := LoadDescriptor(workspaceDir)
	if err != nil {
		return err
	}
	if len(desc.Options) == 0 {
		return nil
	}

	logger.Debug().
		Str("workspace", workspaceDir).
		Int("options", len(desc.Options)).
		Msg("configuring template options")

	keys := make([]string, 0, len(desc.Options))
	for key := range desc.Options {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value, err := defaultValue(key, desc.Options[key])
		if err != nil {
			return err
		}

		token := Placeholder(key)
		logger.Debug().Str("token", token).Str("value", value).Msg("substituting option")
		if err := fsutil.ReplaceInFiles(workspaceDir, token, value); err != nil {
			return fmt.Errorf("failed to substitute option %q: %w", key, err)
		}
	}

	return nil
}

// defaultValue stringifies an option's default, rejecting absent defaults
// and blank strings.
func defaultValue(key string, opt Option) (string, error) {
	switch v := opt.Default.(type) {
	case nil:
		return "", actionerr.New(actionerr.ReasonBadOption, "missing default value for option %q", key)
	case string:
		if strings.TrimSpace(v) == "" {
			return "", actionerr.New(actionerr.ReasonBadOption, "blank default value for option %q", key)
		}
		return v, nil
	case bool:
		if v {
			return "true", nil
		}
		return "false", nil
	case json.Number:
		return v.String(), nil
	default:
		return "", actionerr.New(actionerr.ReasonBadOption, "unsupported default value for option %q", key)
	}
}
