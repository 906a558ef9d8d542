package auth

import (
	"strings"
	"unicode/utf8"

	"github.com/JMURv/session-keeper/internal/dto"
	md "github.com/JMURv/session-keeper/internal/models"
	"github.com/google/uuid"
	"github.com/mssola/useragent"
)

const (
	DeviceMobile  = "mobile"
	DeviceDesktop = "desktop"
	DeviceBot     = "bot"
	unknown       = "Unknown"
)

// Upper bounds of the parsed device fields, in runes. They match the widths
// of the sessions table columns.
const (
	MaxNameLen       = 255
	MaxDeviceTypeLen = 32
	MaxOSLen         = 64
	MaxBrowserLen    = 64
	MaxIPLen         = 64
)

// GenerateDevice builds a session record from request metadata. Parsing is
// best-effort: missing fields fall back to "Unknown".
func GenerateDevice(uid uuid.UUID, token string, d *dto.DeviceRequest) *md.Session {
	ua := useragent.New(d.UA)
	browser, version := ua.Browser()

	os := orUnknown(ua.OS())
	platform := orUnknown(ua.Platform())
	if browser = strings.TrimSpace(browser); browser != "" && version != "" {
		browser += " " + version
	}

	deviceType := DeviceDesktop
	switch {
	case ua.Bot():
		deviceType = DeviceBot
	case ua.Mobile():
		deviceType = DeviceMobile
	}

	return &md.Session{
		UserID:     uid,
		Name:       truncate(os+" - "+platform, MaxNameLen),
		DeviceType: truncate(deviceType, MaxDeviceTypeLen),
		OS:         truncate(os, MaxOSLen),
		Browser:    truncate(orUnknown(browser), MaxBrowserLen),
		UA:         d.UA,
		IP:         truncate(d.IP, MaxIPLen),
		Token:      token,
	}
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return unknown
	}
	return s
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	r := []rune(s)
	return string(r[:n])
}
