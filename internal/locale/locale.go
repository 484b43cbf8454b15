// Package locale formats the client's own user-visible strings. Narrative
// text comes from the server already written and is never translated here.
package locale

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys. The English text doubles as the key.
const (
	ZoneProgress    = "Zone %d/%d"
	ZoneTheme       = "Zone %d - %s"
	ZoneCharSelect  = "Zone %d - Character Selection"
	EnemyLevel      = "%s - Level %d"
	Level           = "Level %d"
	Items           = "Items: %d"
	Active          = "Active: %d/%d"
	ContinueZone    = "CONTINUE (Zone %d)"
	Continue        = "CONTINUE"
	NewGame         = "NEW GAME"
	Tutorial        = "HOW TO PLAY"
	Retry           = "RETRY"
	NoSave          = "No save found!"
	SaveCorrupted   = "Save corrupted!"
	SaveUnusable    = "Save cannot be loaded!"
	StartFailed     = "Failed to start game: %v"
	ConnectionError = "Connection error: %v"
	ErrorPrefix     = "ERROR: %s"
	Loading         = "Waiting for server..."
)

// Supported lists the languages with a catalog. English is the fallback.
var Supported = []language.Tag{language.English, language.Japanese}

var matcher = language.NewMatcher(Supported)

func init() {
	ja := language.Japanese
	for key, text := range map[string]string{
		ZoneProgress:    "ゾーン %d/%d",
		ZoneTheme:       "ゾーン %d - %s",
		ZoneCharSelect:  "ゾーン %d - キャラクター選択",
		EnemyLevel:      "%s - レベル %d",
		Level:           "レベル %d",
		Items:           "アイテム: %d",
		Active:          "出場中: %d/%d",
		ContinueZone:    "つづきから (ゾーン %d)",
		Continue:        "つづきから",
		NewGame:         "はじめから",
		Tutorial:        "あそびかた",
		Retry:           "再試行",
		NoSave:          "セーブデータがありません!",
		SaveCorrupted:   "セーブデータが壊れています!",
		SaveUnusable:    "このセーブデータは読み込めません!",
		StartFailed:     "ゲームを開始できませんでした: %v",
		ConnectionError: "接続エラー: %v",
		ErrorPrefix:     "エラー: %s",
		Loading:         "サーバーを待っています...",
	} {
		_ = message.SetString(ja, key, text)
	}
}

// Printer formats message keys for one language.
type Printer struct {
	p   *message.Printer
	tag language.Tag
}

// New returns a printer for the best supported match of lang. An empty or
// unknown lang gives English.
func New(lang string) *Printer {
	tag := language.English
	if lang != "" {
		if parsed, err := language.Parse(lang); err == nil {
			_, idx, conf := matcher.Match(parsed)
			if conf != language.No {
				tag = Supported[idx]
			}
		}
	}
	return &Printer{p: message.NewPrinter(tag), tag: tag}
}

// Sprintf formats key with args.
func (p *Printer) Sprintf(key string, args ...any) string {
	return p.p.Sprintf(key, args...)
}

// Tag returns the language in use.
func (p *Printer) Tag() language.Tag {
	return p.tag
}
