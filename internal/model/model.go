package model

import "time"

// UserID is the Telegram numeric identity of a participant.
type UserID int64

type RoomCode string

const EmptyRoomCode RoomCode = ""

type Room struct {
	Code      RoomCode
	Name      string
	CreatorID UserID
	CreatedAt time.Time
}

// Stats is the opaque measurement payload sent by the web client
// (tap counts, frequency, shake intensity, ...). The server stores and
// returns it verbatim and never interprets the keys.
type Stats map[string]any

// Result is one participant's latest self-reported state within a room.
type Result struct {
	UserID      UserID
	DisplayName string
	Emotion     Emotion
	Stats       Stats
	SubmittedAt time.Time
}

type Bar struct {
	Emotion Emotion
	Percent int
	// Length is the filled slot count of a 10-slot bar, never 0 for a
	// present emotion.
	Length int
}

type Summary struct {
	Total    int
	Counts   map[Emotion]int
	Dominant Emotion
	// Bars holds one entry per submitted emotion, ordered by count
	// descending. Total == 0 means "no submissions yet" and Bars is empty.
	Bars []Bar
}
