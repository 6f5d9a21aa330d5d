package model

type Emotion string

const (
	EmotionStressed Emotion = "stressed"
	EmotionExcited  Emotion = "excited"
	EmotionCalm     Emotion = "calm"
	EmotionAnxious  Emotion = "anxious"
	EmotionFocused  Emotion = "focused"
	EmotionSad      Emotion = "sad"
)

// CanonicalEmotions fixes the tie-break order for dominant-emotion
// selection and bar sorting.
var CanonicalEmotions = []Emotion{
	EmotionStressed,
	EmotionExcited,
	EmotionCalm,
	EmotionAnxious,
	EmotionFocused,
	EmotionSad,
}

// EmotionMeta is static presentation data for one emotion.
type EmotionMeta struct {
	Title string `json:"title"`
	Emoji string `json:"emoji"`
	Color string `json:"color"`
}

var emotionCatalog = map[Emotion]EmotionMeta{
	EmotionStressed: {Title: "Стресс", Emoji: "😤", Color: "#e74c3c"},
	EmotionExcited:  {Title: "Возбуждение", Emoji: "🤩", Color: "#f39c12"},
	EmotionCalm:     {Title: "Спокойствие", Emoji: "😌", Color: "#2ecc71"},
	EmotionAnxious:  {Title: "Тревога", Emoji: "😟", Color: "#9b59b6"},
	EmotionFocused:  {Title: "Сосредоточенность", Emoji: "🧐", Color: "#3498db"},
	EmotionSad:      {Title: "Грусть", Emoji: "😔", Color: "#5d6d7e"},
}

var fallbackMeta = EmotionMeta{Title: "Другое", Emoji: "✨", Color: "#95a5a6"}

// Lookup returns presentation data for any label. Labels outside the
// known set get a generic fallback instead of an error so newer clients
// keep working against older servers.
func Lookup(e Emotion) EmotionMeta {
	if meta, ok := emotionCatalog[e]; ok {
		return meta
	}
	return fallbackMeta
}

// Known reports whether e is one of the canonical six.
func Known(e Emotion) bool {
	_, ok := emotionCatalog[e]
	return ok
}

// Catalog returns the full static emotion table keyed by label, for
// clients that render their own legend.
func Catalog() map[Emotion]EmotionMeta {
	out := make(map[Emotion]EmotionMeta, len(emotionCatalog))
	for e, meta := range emotionCatalog {
		out[e] = meta
	}
	return out
}
