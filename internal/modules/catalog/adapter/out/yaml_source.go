package out

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"trackboard/internal/modules/catalog/domain"
	apperrors "trackboard/internal/platform/errors"
)

// YAMLSource reads the track list from a YAML file of the form
//
//	tracks:
//	  - name: DK Pass
//	    image: DK Pass.png
//	    code: ":track_031rDKP:"
//
// A missing file yields the built-in list.
type YAMLSource struct {
	path string
}

type catalogFile struct {
	Tracks []domain.Track `yaml:"tracks"`
}

func NewYAMLSource(path string) *YAMLSource {
	return &YAMLSource{path: path}
}

func (s *YAMLSource) Load(_ context.Context) ([]domain.Track, error) {
	if s.path == "" {
		return domain.Default(), nil
	}
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("%w: catalog %s: %v", apperrors.ErrInvalidFormat, s.path, err)
	}
	if len(file.Tracks) == 0 {
		return nil, fmt.Errorf("%w: catalog %s lists no tracks", apperrors.ErrInvalidFormat, s.path)
	}
	if err := domain.Validate(file.Tracks); err != nil {
		return nil, err
	}
	return file.Tracks, nil
}

// StaticSource serves a fixed list.
type StaticSource []domain.Track

func (s StaticSource) Load(context.Context) ([]domain.Track, error) {
	return append([]domain.Track(nil), s...), nil
}
