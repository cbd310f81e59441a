package profile

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io/fs"
	"path/filepath"

	"github.com/arthur-debert/portcfg/pkg/config"
	"github.com/arthur-debert/portcfg/pkg/errors"
	"github.com/arthur-debert/portcfg/pkg/logging"
	"github.com/arthur-debert/portcfg/pkg/types"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Document extensions, in lookup order
var extensions = []string{".json", ".yaml", ".yml"}

// Loader reads profiles and manifests from one template root.
type Loader struct {
	fs           types.FS
	profilesDir  string
	manifestsDir string
}

// NewLoader creates a loader for templateRoot using the configured
// profile and manifest directories.
func NewLoader(fsys types.FS, templateRoot string, cfg *config.Config) *Loader {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Loader{
		fs:           fsys,
		profilesDir:  filepath.Join(templateRoot, filepath.FromSlash(cfg.Profiles.Dir)),
		manifestsDir: filepath.Join(templateRoot, filepath.FromSlash(cfg.Profiles.ManifestsDir)),
	}
}

// Load reads, decodes and validates the named profile and its manifest.
func (l *Loader) Load(name string) (*types.Profile, *types.Manifest, error) {
	logger := logging.GetLogger("profile")

	if name == "" {
		return nil, nil, errors.New(errors.ErrInvalidInput, "profile name is required")
	}

	profilePath, err := l.find(l.profilesDir, name)
	if err != nil {
		return nil, nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to look up profile %s", name)
	}
	if profilePath == "" {
		return nil, nil, errors.Newf(errors.ErrProfileNotFound, "Profile not found: %s", filepath.Join(l.profilesDir, name+".json"))
	}
	manifestPath, err := l.find(l.manifestsDir, name)
	if err != nil {
		return nil, nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to look up manifest %s", name)
	}
	if manifestPath == "" {
		return nil, nil, errors.Newf(errors.ErrManifestNotFound, "Manifest not found: %s", filepath.Join(l.manifestsDir, name+".json"))
	}

	var profile types.Profile
	if err := l.decode(profilePath, &profile); err != nil {
		return nil, nil, errors.Wrapf(err, errors.ErrProfileInvalid, "invalid profile %s", profilePath)
	}
	if err := validateStruct(&profile); err != nil {
		return nil, nil, errors.Wrapf(err, errors.ErrProfileInvalid, "invalid profile %s", profilePath)
	}
	if profile.Profile != name {
		return nil, nil, errors.Newf(errors.ErrProfileInvalid, "Profile name mismatch: %s declares %q", profilePath, profile.Profile)
	}

	var manifest types.Manifest
	if err := l.decode(manifestPath, &manifest); err != nil {
		var unknown *types.UnknownStrategyError
		if stderrors.As(err, &unknown) {
			return nil, nil, errors.Wrapf(err, errors.ErrUnsupportedStrategy, "invalid manifest %s", manifestPath).
				WithAction(l.actionWithStrategy(manifestPath, unknown.Name))
		}
		return nil, nil, errors.Wrapf(err, errors.ErrManifestInvalid, "invalid manifest %s", manifestPath)
	}
	if err := validateStruct(&manifest); err != nil {
		return nil, nil, errors.Wrapf(err, errors.ErrManifestInvalid, "invalid manifest %s", manifestPath)
	}
	if manifest.Profile != name {
		return nil, nil, errors.Newf(errors.ErrManifestInvalid, "Manifest profile mismatch: %s declares %q", manifestPath, manifest.Profile)
	}

	logger.Debug().
		Str("profile", name).
		Str("profile_path", profilePath).
		Str("manifest_path", manifestPath).
		Int("actions", len(manifest.Actions)).
		Msg("Loaded profile")

	return &profile, &manifest, nil
}

// find returns the first existing document for name in dir, or "" when
// there is none.
func (l *Loader) find(dir, name string) (string, error) {
	for _, ext := range extensions {
		path := filepath.Join(dir, name+ext)
		info, err := l.fs.Stat(path)
		if err != nil {
			if stderrors.Is(err, fs.ErrNotExist) {
				continue
			}
			return "", err
		}
		if !info.IsDir() {
			return path, nil
		}
	}
	return "", nil
}

func (l *Loader) decode(path string, out interface{}) error {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		return err
	}
	if filepath.Ext(path) == ".json" {
		dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		return dec.Decode(out)
	}
	return yaml.Unmarshal(data, out)
}

// actionWithStrategy finds the id of the first action using strategy. It
// only runs after strict decoding failed, so the document is re-read
// without the strategy check.
func (l *Loader) actionWithStrategy(path, strategy string) string {
	var raw struct {
		Actions []struct {
			ID       string `json:"id" yaml:"id"`
			Strategy string `json:"strategy" yaml:"strategy"`
		} `json:"actions" yaml:"actions"`
	}
	if err := l.decode(path, &raw); err != nil {
		return ""
	}
	for _, action := range raw.Actions {
		if action.Strategy == strategy {
			return action.ID
		}
	}
	return ""
}
