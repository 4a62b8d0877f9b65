package ingest

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmail "google.golang.org/api/gmail/v1"
)

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name  string
		label string
		today time.Time
		want  string
	}{
		{
			name:  "mid-month window",
			label: "newsletter",
			today: time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC),
			want:  "label:newsletter after:2025/03/08 before:2025/03/15",
		},
		{
			name:  "window crosses month boundary",
			label: "newsletter",
			today: time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC),
			want:  "label:newsletter after:2025/02/23 before:2025/03/02",
		},
		{
			name:  "window crosses year boundary",
			label: "digest",
			today: time.Date(2025, 1, 3, 9, 0, 0, 0, time.UTC),
			want:  "label:digest after:2024/12/27 before:2025/01/03",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildQuery(tt.label, tt.today))
		})
	}
}

func TestFormatKST(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{
			name: "utc instant shifts forward nine hours",
			in:   time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC),
			want: "2025-03-01 19:30:00",
		},
		{
			name: "late evening rolls into the next day",
			in:   time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC),
			want: "2025-03-02 05:00:00",
		},
		{
			name: "offset zones are normalized to utc first",
			in:   time.Date(2025, 3, 1, 19, 0, 0, 0, time.FixedZone("KST", 9*3600)),
			want: "2025-03-01 19:00:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatKST(tt.in))
		})
	}
}

func TestDecodeBody(t *testing.T) {
	body := []byte("Hello, newsletter! ?>~")

	tests := []struct {
		name string
		data string
	}{
		{name: "web-safe padded", data: base64.URLEncoding.EncodeToString(body)},
		{name: "web-safe unpadded", data: base64.RawURLEncoding.EncodeToString(body)},
		{name: "standard", data: base64.StdEncoding.EncodeToString(body)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeBody(tt.data)
			require.NoError(t, err)
			assert.Equal(t, body, got)
		})
	}

	t.Run("garbage input", func(t *testing.T) {
		_, err := decodeBody("not base64 at all!!!")
		assert.Error(t, err)
	})
}

func TestCharsetName(t *testing.T) {
	assert.Equal(t, "euc-kr", charsetName(`text/html; charset="euc-kr"`))
	assert.Equal(t, "", charsetName("text/plain"))
	assert.Equal(t, "", charsetName(""))
	assert.Equal(t, "", charsetName("not a media type;;;"))
}

func TestParseMessage(t *testing.T) {
	htmlBody := "<p>Hi <b>there</b></p>"

	msg := &gmail.Message{
		Id: "msg-1",
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "Subject", Value: "Weekly digest"},
				{Name: "From", Value: "news@example.com"},
				{Name: "Date", Value: "Sat, 01 Mar 2025 10:30:00 +0000"},
			},
			Parts: []*gmail.MessagePart{
				{
					MimeType: "text/html",
					Headers: []*gmail.MessagePartHeader{
						{Name: "Content-Type", Value: `text/html; charset="utf-8"`},
					},
					Body: &gmail.MessagePartBody{
						Data: base64.URLEncoding.EncodeToString([]byte(htmlBody)),
					},
				},
			},
		},
	}

	raw, err := ParseMessage(msg)
	require.NoError(t, err)
	assert.Equal(t, "msg-1", raw.ID)
	assert.Equal(t, "Weekly digest", raw.Subject)
	assert.Equal(t, "news@example.com", raw.Sender)
	assert.Equal(t, "2025-03-01 19:30:00", raw.ReceivedDate)
	assert.Equal(t, "Hi there", raw.EmailContent)
}

func TestParseMessage_BodyOnPayload(t *testing.T) {
	msg := &gmail.Message{
		Id: "msg-2",
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "Subject", Value: "Plain body"},
				{Name: "Date", Value: "Sat, 01 Mar 2025 00:00:00 +0000"},
			},
			Body: &gmail.MessagePartBody{
				Data: base64.RawURLEncoding.EncodeToString([]byte("just text")),
			},
		},
	}

	raw, err := ParseMessage(msg)
	require.NoError(t, err)
	assert.Equal(t, "just text", raw.EmailContent)
}

func TestParseMessage_NoPayload(t *testing.T) {
	_, err := ParseMessage(&gmail.Message{Id: "msg-3"})
	assert.Error(t, err)
}

func TestParseMessage_NoBody(t *testing.T) {
	msg := &gmail.Message{
		Id: "msg-4",
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "Subject", Value: "Empty"},
			},
		},
	}

	_, err := ParseMessage(msg)
	assert.Error(t, err)
}

func TestParseMessage_UnparseableDateFallsBackToNow(t *testing.T) {
	msg := &gmail.Message{
		Id: "msg-5",
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "Date", Value: "not a date"},
			},
			Body: &gmail.MessagePartBody{
				Data: base64.RawURLEncoding.EncodeToString([]byte("body")),
			},
		},
	}

	before := FormatKST(time.Now())
	raw, err := ParseMessage(msg)
	require.NoError(t, err)
	after := FormatKST(time.Now())

	assert.GreaterOrEqual(t, raw.ReceivedDate, before)
	assert.LessOrEqual(t, raw.ReceivedDate, after)
}
