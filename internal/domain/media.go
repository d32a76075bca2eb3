package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MediaKind names the media variant behind an option.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
	MediaAudio MediaKind = "audio"
)

// Media is the presentation payload of an option. Scoring never looks at it.
type Media interface {
	Kind() MediaKind
	// Describe returns a short human label, used as the choice description in reports.
	Describe() string
}

// Image is a picture option.
type Image struct {
	Path   string `json:"path"`
	Alt    string `json:"alt,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

func (Image) Kind() MediaKind { return MediaImage }

func (m Image) Describe() string {
	if m.Alt != "" {
		return m.Alt
	}
	return m.Path
}

// Video is a video option with one or more source files.
type Video struct {
	Sources []string `json:"sources"`
	Title   string   `json:"title,omitempty"`
}

func (Video) Kind() MediaKind { return MediaVideo }

func (m Video) Describe() string {
	if m.Title != "" {
		return m.Title
	}
	return strings.Join(m.Sources, ", ")
}

// Audio is an audio option with one or more source files.
type Audio struct {
	Sources []string `json:"sources"`
	Title   string   `json:"title,omitempty"`
}

func (Audio) Kind() MediaKind { return MediaAudio }

func (m Audio) Describe() string {
	if m.Title != "" {
		return m.Title
	}
	return strings.Join(m.Sources, ", ")
}

type mediaEnvelope struct {
	Type string `json:"type"`
}

// DecodeMedia resolves a raw media descriptor into its variant.
// Unknown or empty types yield nil media and no error.
func DecodeMedia(raw json.RawMessage) (Media, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var env mediaEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode media: %w", err)
	}
	switch MediaKind(strings.ToLower(env.Type)) {
	case MediaImage:
		var m Image
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("decode image: %w", err)
		}
		return m, nil
	case MediaVideo:
		var m Video
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("decode video: %w", err)
		}
		return m, nil
	case MediaAudio:
		var m Audio
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("decode audio: %w", err)
		}
		return m, nil
	}
	return nil, nil
}

type authoredOptionJSON struct {
	Correct json.RawMessage `json:"correct"`
	Media   json.RawMessage `json:"media"`
}

// UnmarshalJSON resolves the media variant once. A missing or non-boolean correct flag reads as false.
func (o *AuthoredOption) UnmarshalJSON(data []byte) error {
	var raw authoredOptionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var correct bool
	if len(raw.Correct) > 0 {
		_ = json.Unmarshal(raw.Correct, &correct)
	}
	media, err := DecodeMedia(raw.Media)
	if err != nil {
		return err
	}
	o.Correct = correct
	o.Media = media
	return nil
}

// MarshalJSON writes the media back with its type tag.
func (o AuthoredOption) MarshalJSON() ([]byte, error) {
	out := struct {
		Correct bool `json:"correct"`
		Media   any  `json:"media,omitempty"`
	}{Correct: o.Correct}
	switch m := o.Media.(type) {
	case Image:
		out.Media = struct {
			Type MediaKind `json:"type"`
			Image
		}{MediaImage, m}
	case Video:
		out.Media = struct {
			Type MediaKind `json:"type"`
			Video
		}{MediaVideo, m}
	case Audio:
		out.Media = struct {
			Type MediaKind `json:"type"`
			Audio
		}{MediaAudio, m}
	}
	return json.Marshal(out)
}
