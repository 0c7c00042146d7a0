package media

import (
	"fmt"
	"time"
)

// Asset is a timestamped media record associated with experiences during a
// build.
type Asset interface {
	// Distinguisher is the string that identifies this exact asset content
	// for fingerprinting.
	Distinguisher() string
	// At is the moment the asset was captured.
	At() time.Time
	// Day is the authored capture day.
	Day() string
	// Slug is the optional human identifier.
	Slug() string
	// Tags are the authored tags used to claim assets for sub-experiences.
	Tags() []string
	// Filename is the derived storage file name.
	Filename() string
}

// Meta carries the fields shared by images and clips.
type Meta struct {
	Caption string   `json:"caption"`
	Hash    string   `json:"hash"`
	SlugVal string   `json:"slug"`
	Time    string   `json:"time"`
	Ext     string   `json:"ext"`
	TagList []string `json:"tags"`

	day string
	at  time.Time
}

// SetCapture records the capture day and resolved timestamp; the loaders
// call it after parsing authored metadata.
func (m *Meta) SetCapture(day string, at time.Time) {
	m.day = day
	m.at = at
}

func (m *Meta) At() time.Time  { return m.at }
func (m *Meta) Day() string    { return m.day }
func (m *Meta) Slug() string   { return m.SlugVal }
func (m *Meta) Tags() []string { return m.TagList }

func (m *Meta) baseFilename() string {
	name := m.day
	if m.SlugVal != "" {
		name += "__" + m.SlugVal
	}
	return name
}

// Image is a photo with an original source file name.
type Image struct {
	Meta
	Orig string `json:"orig"`
}

// Distinguisher for an image is its content hash.
func (i *Image) Distinguisher() string { return i.Hash }

func (i *Image) Filename() string {
	return fmt.Sprintf("%s__%s.%s", i.baseFilename(), i.Hash, i.Ext)
}

func (i *Image) String() string {
	return fmt.Sprintf("%s %s (%s)", i.day, i.Distinguisher(), i.SlugVal)
}

// Clip is a video excerpt; the published form is always webm regardless of
// the authored container.
type Clip struct {
	Meta
	Start    string `json:"start"`
	Duration string `json:"duration"`

	FormerExt string `json:"-"`
}

// Distinguisher for a clip combines content hash with the excerpt window,
// since two clips can share source footage.
func (c *Clip) Distinguisher() string {
	return fmt.Sprintf("%s__%s-%s", c.Hash, c.Start, c.Duration)
}

func (c *Clip) Filename() string {
	return fmt.Sprintf("%s__%s__%s-%s.webm", c.baseFilename(), c.Hash, c.Start, c.Duration)
}

func (c *Clip) String() string {
	return fmt.Sprintf("%s %s (%s)", c.day, c.Distinguisher(), c.SlugVal)
}
