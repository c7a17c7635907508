package settings

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	tagRoot     = "mdcvis"
	tagVideo    = "video"
	tagControls = "controls"
	tagAudio    = "audio"
	tagSetting  = "setting"
	tagKey      = "key"
)

// Decode reads a settings document. Fields missing from the document keep
// their Defaults value. Element and attribute names are case-insensitive, and
// the legacy form with unclosed setting and key elements is accepted.
func Decode(r io.Reader) (Settings, error) {
	s := Defaults()

	d := xml.NewDecoder(r)
	d.Strict = false
	d.AutoClose = []string{tagSetting, tagKey}

	section := ""
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			return s, nil
		}
		if err != nil {
			return Defaults(), fmt.Errorf("parse settings: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := strings.ToLower(t.Name.Local)
			switch {
			case section == "" && (name == tagVideo || name == tagControls || name == tagAudio):
				section = name
			case section == tagVideo && name == tagSetting:
				if err := applyVideo(&s, attr(t, "name"), attr(t, "value")); err != nil {
					return Defaults(), err
				}
			case section == tagControls && name == tagKey:
				if err := applyKey(&s, attr(t, "name"), attr(t, "value")); err != nil {
					return Defaults(), err
				}
			}
		case xml.EndElement:
			if strings.EqualFold(t.Name.Local, section) {
				section = ""
			}
		}
	}
}

func applyVideo(s *Settings, name, value string) error {
	switch strings.ToLower(name) {
	case "driver":
		drv, err := ParseDriver(value)
		if err != nil {
			return err
		}
		s.Driver = drv
	case "fullscreen":
		s.Fullscreen = value == "1"
	case "vsync":
		s.VSync = value == "1"
	case "antialiasing":
		f, err := strconv.ParseUint(strings.TrimSpace(value), 10, 8)
		if err != nil || !ValidAntialiasing(uint8(f)) {
			return fmt.Errorf("%w: antialiasing %q", ErrInvalidValue, value)
		}
		s.Antialiasing = uint8(f)
	case "resolution":
		res, err := ParseResolution(value)
		if err != nil {
			return err
		}
		s.Resolution = res
	}
	return nil
}

func applyKey(s *Settings, name, value string) error {
	action, ok := actionByFileName(name)
	if !ok {
		return nil
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("%w: empty binding for %s", ErrUnknownKey, action)
	}
	code, err := KeyCodeFor([]rune(value)[0])
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	s.Keys[action] = code
	return nil
}

func actionByFileName(name string) (Action, bool) {
	for _, a := range Actions {
		if equalFold(name, a.String()) {
			return a, true
		}
	}
	return 0, false
}

func attr(t xml.StartElement, name string) string {
	for _, a := range t.Attr {
		if strings.EqualFold(a.Name.Local, name) {
			return strings.TrimSpace(a.Value)
		}
	}
	return ""
}

// Encode renders s as a settings document.
func Encode(s Settings) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	fmt.Fprintf(&buf, "<%s>\n", tagRoot)

	fmt.Fprintf(&buf, "  <%s>\n", tagVideo)
	writeEntry(&buf, tagSetting, "driver", s.Driver.String())
	writeEntry(&buf, tagSetting, "fullscreen", flag(s.Fullscreen))
	writeEntry(&buf, tagSetting, "antialiasing", strconv.Itoa(int(s.Antialiasing)))
	writeEntry(&buf, tagSetting, "vsync", flag(s.VSync))
	writeEntry(&buf, tagSetting, "resolution", s.Resolution.String())
	fmt.Fprintf(&buf, "  </%s>\n", tagVideo)

	fmt.Fprintf(&buf, "  <%s>\n", tagControls)
	for _, a := range Actions {
		c, _ := CharFor(s.Keys[a])
		writeEntry(&buf, tagKey, a.String(), string(c))
	}
	fmt.Fprintf(&buf, "  </%s>\n", tagControls)

	fmt.Fprintf(&buf, "  <%s>\n", tagAudio)
	buf.WriteString("    <!-- Unused -->\n")
	writeEntry(&buf, tagSetting, "volume", "1.0")
	fmt.Fprintf(&buf, "  </%s>\n", tagAudio)

	fmt.Fprintf(&buf, "</%s>\n", tagRoot)
	return buf.Bytes(), nil
}

func writeEntry(buf *bytes.Buffer, tag, name, value string) {
	fmt.Fprintf(buf, "    <%s name=\"%s\" value=\"", tag, name)
	xml.EscapeText(buf, []byte(value))
	buf.WriteString("\"/>\n")
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
