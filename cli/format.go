package cli

import (
	"fmt"
	"kiosk/models"
	"kiosk/settings"
	"strconv"
)

var arrowNames = map[string]string{
	string(settings.CharUp):    "up arrow",
	string(settings.CharDown):  "down arrow",
	string(settings.CharLeft):  "left arrow",
	string(settings.CharRight): "right arrow",
}

// describeKey spells out arrow bindings.
func describeKey(char string) string {
	if name, ok := arrowNames[char]; ok {
		return fmt.Sprintf("%s (%s)", char, name)
	}
	if char == "" {
		return "-"
	}
	return char
}

func formatFloat(f float32) string {
	if f == models.BadValue {
		return "n/a"
	}
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

func formatVec(v models.Vec3) string {
	if v.IsBad() {
		return "n/a"
	}
	return fmt.Sprintf("(%s, %s, %s)", formatFloat(v.X), formatFloat(v.Y), formatFloat(v.Z))
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func upDown(b bool) string {
	if b {
		return "up"
	}
	return "down"
}

func visibleHidden(b bool) string {
	if b {
		return "visible"
	}
	return "hidden"
}
