package normalize

import (
	"errors"

	"github.com/google/uuid"
	"github.com/stagedoor/backend/internal/models"
	"github.com/stagedoor/backend/pkg/slug"
	"github.com/tidwall/gjson"
)

// ErrUnsuccessful is returned by DJPayload when the envelope says success:false.
var ErrUnsuccessful = errors.New("remote reported failure")

// SongFields is the mapping table shared by requests, cooldowns and blacklist rows.
var SongFields = FieldMap{
	{Name: "id", Keys: []string{"id", "ID", "requestId", "_id"}},
	{Name: "songId", Keys: []string{"songId", "song_id", "Song ID"}},
	{Name: "title", Keys: []string{"title", "Title", "songTitle", "Song Title", "song"}},
	{Name: "artist", Keys: []string{"artist", "Artist", "artistName", "Artist Name"}},
	{Name: "venue", Keys: []string{"venue", "Venue"}},
	{Name: "requestCount", Keys: []string{"requestCount", "request_count", "Request Count", "count"}},
	{Name: "requestedAt", Keys: []string{"timestamp", "requestedAt", "createdAt", "created_at"}},
	{Name: "playedAt", Keys: []string{"playedAt", "played_at", "Played At"}},
	{Name: "cooldownUntil", Keys: []string{"cooldownUntil", "cooldown_until", "Cooldown Until"}},
}

type songIdentity struct {
	id     uuid.UUID
	songID string
	title  string
	artist string
}

func identity(record gjson.Result) songIdentity {
	title := String(SongFields.Get(record, "title"), "Unknown Title")
	artist := String(SongFields.Get(record, "artist"), "Unknown Artist")
	songID := String(SongFields.Get(record, "songId"), "")
	if songID == "" {
		songID = slug.SongID(artist, title)
	}
	raw := String(SongFields.Get(record, "id"), "")
	id, err := uuid.Parse(raw)
	switch {
	case err == nil:
	case raw != "":
		// Foreign row ids (tabular-store "rec..." keys) map to a stable uuid.
		id = uuid.NewSHA1(uuid.NameSpaceURL, []byte("row:"+raw))
	default:
		id = uuid.NewSHA1(uuid.NameSpaceURL, []byte("song:"+songID))
	}
	return songIdentity{id: id, songID: songID, title: title, artist: artist}
}

// SongRequest normalizes one request row.
func SongRequest(record gjson.Result) models.SongRequest {
	ident := identity(record)
	count := Int(SongFields.Get(record, "requestCount"))
	if count < 1 {
		count = 1
	}
	return models.SongRequest{
		ID:           ident.id,
		SongID:       ident.songID,
		Title:        ident.title,
		Artist:       ident.artist,
		Venue:        String(SongFields.Get(record, "venue"), ""),
		RequestCount: count,
		RequestedAt:  Time(SongFields.Get(record, "requestedAt")),
	}
}

// CooldownSong normalizes one cooldown row.
func CooldownSong(record gjson.Result) models.CooldownSong {
	ident := identity(record)
	return models.CooldownSong{
		ID:            ident.id,
		SongID:        ident.songID,
		Title:         ident.title,
		Artist:        ident.artist,
		PlayedAt:      Time(SongFields.Get(record, "playedAt")),
		CooldownUntil: Time(SongFields.Get(record, "cooldownUntil")),
	}
}

// BlacklistedSong normalizes one blacklist row.
func BlacklistedSong(record gjson.Result) models.BlacklistedSong {
	ident := identity(record)
	return models.BlacklistedSong{
		ID:        ident.id,
		SongID:    ident.songID,
		Title:     ident.title,
		Artist:    ident.artist,
		CreatedAt: Time(SongFields.Get(record, "requestedAt")),
	}
}

func list(root gjson.Result, path string) []gjson.Result {
	v := root.Get(path)
	if !v.IsArray() {
		return nil
	}
	return objects(v)
}

// DJPayload decodes the unified GET /dj/requests payload
// {success, data: {availableRequests, blacklist, activeCooldown, stats}}.
// Missing or malformed collections decode as empty. The only error is an
// explicit success:false (or an unparseable body).
func DJPayload(payload []byte) (models.DJSnapshot, error) {
	snap := models.DJSnapshot{
		AvailableRequests: []models.SongRequest{},
		Blacklist:         []models.BlacklistedSong{},
		ActiveCooldown:    []models.CooldownSong{},
	}
	if !gjson.ValidBytes(payload) {
		return snap, ErrUnsuccessful
	}
	root := gjson.ParseBytes(payload)
	if s := root.Get("success"); s.Exists() && !s.Bool() {
		return snap, ErrUnsuccessful
	}
	data := root.Get("data")
	if !data.IsObject() {
		data = root
	}

	for _, r := range list(data, "availableRequests") {
		snap.AvailableRequests = append(snap.AvailableRequests, SongRequest(r))
	}
	for _, r := range list(data, "blacklist") {
		snap.Blacklist = append(snap.Blacklist, BlacklistedSong(r))
	}
	for _, r := range list(data, "activeCooldown") {
		snap.ActiveCooldown = append(snap.ActiveCooldown, CooldownSong(r))
	}

	stats := data.Get("stats")
	snap.Stats = models.DJStats{
		TotalRequests:   Int(stats.Get("totalRequests")),
		UniqueSongs:     Int(stats.Get("uniqueSongs")),
		ActiveCooldowns: Int(stats.Get("activeCooldowns")),
		Blacklisted:     Int(stats.Get("blacklisted")),
	}
	return snap, nil
}
