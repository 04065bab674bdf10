package icon

// Icon identifies a UI symbol in the global registry.
type Icon int

const (
	Play Icon = iota
	Pause
	Stop
	Audio
	Video
	Question
	Success
	Fail
	Progress
)

var icons = map[Icon]*iconDef{
	Play: {
		emoji:   "▶️",
		nerd:    "",
		plain:   ">",
		kaomoji: "(ᐖ)",
		squares: "▶",
	},
	Pause: {
		emoji:   "⏸️",
		nerd:    "",
		plain:   "||",
		kaomoji: "(・_・)",
		squares: "⏸",
	},
	Stop: {
		emoji:   "⏹️",
		nerd:    "",
		plain:   "x",
		kaomoji: "(￣^￣)",
		squares: "⏹",
	},
	Audio: {
		emoji:   "🔊",
		nerd:    "",
		plain:   "[a]",
		kaomoji: "♪(´ε` )",
		squares: "🔲",
	},
	Video: {
		emoji:   "🎬",
		nerd:    "",
		plain:   "[v]",
		kaomoji: "( •_•)>⌐■-■",
		squares: "🔳",
	},
	Question: {
		emoji:   "❓",
		nerd:    "",
		plain:   "?",
		kaomoji: "(･o･;)",
		squares: "🔲",
	},
	Success: {
		emoji:   "✅",
		nerd:    "",
		plain:   "+",
		kaomoji: "(ᵔ◡ᵔ)",
		squares: "🟩",
	},
	Fail: {
		emoji:   "❌",
		nerd:    "",
		plain:   "-",
		kaomoji: "(╥﹏╥)",
		squares: "🟥",
	},
	Progress: {
		emoji:   "⏳",
		nerd:    "",
		plain:   "~",
		kaomoji: "(￣ー￣)ゞ",
		squares: "🟨",
	},
}
