package gong

import (
	"time"

	"github.com/callvista/callsight/transcript"
)

// Call is one call record from the call listing endpoint.
type Call struct {
	Id       string    `json:"id"`
	Title    string    `json:"title"`
	Duration int64     `json:"duration"` // seconds
	Started  time.Time `json:"started"`
	URL      string    `json:"url"`
}

// callsResponse is one page of the call listing endpoint.
type callsResponse struct {
	Calls   []Call `json:"calls"`
	Records struct {
		Cursor          string `json:"cursor"`
		TotalRecords    int    `json:"totalRecords"`
		CurrentPageSize int    `json:"currentPageSize"`
	} `json:"records"`
}

// transcriptRequest filters the transcript endpoint to specific calls.
type transcriptRequest struct {
	Filter struct {
		CallIds []string `json:"callIds"`
	} `json:"filter"`
}

// transcriptResponse is the transcript endpoint payload. Each call carries a
// list of speaker turns, each turn a list of timed sentences.
type transcriptResponse struct {
	CallTranscripts []struct {
		CallId     string `json:"callId"`
		Transcript []struct {
			SpeakerId string `json:"speakerId"`
			Topic     string `json:"topic"`
			Sentences []struct {
				Start int64  `json:"start"`
				End   int64  `json:"end"`
				Text  string `json:"text"`
			} `json:"sentences"`
		} `json:"transcript"`
	} `json:"callTranscripts"`
}

// turns converts the wire payload for one call into normalizer input.
func (r *transcriptResponse) turns(callId string) []transcript.Turn {
	for _, ct := range r.CallTranscripts {
		if ct.CallId != callId {
			continue
		}

		turns := make([]transcript.Turn, 0, len(ct.Transcript))
		for _, wireTurn := range ct.Transcript {
			turn := transcript.Turn{Speaker: wireTurn.SpeakerId}
			for _, sentence := range wireTurn.Sentences {
				turn.Sentences = append(turn.Sentences, transcript.Sentence{
					Text:    sentence.Text,
					StartMs: sentence.Start,
				})
			}
			turns = append(turns, turn)
		}
		return turns
	}
	return nil
}
