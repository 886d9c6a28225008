package tmdb

import (
	"context"
	"net/url"
	"strconv"

	"github.com/cinewave/cinewave/internal/domain"
)

// CastMember is one credited performer.
type CastMember struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character,omitempty"`
	ProfilePath string `json:"profile_path,omitempty"`
	ProfileURL  string `json:"profile_url,omitempty"`
	Order       int    `json:"order"`
}

// CrewMember is one credited crew member.
type CrewMember struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Job        string `json:"job,omitempty"`
	Department string `json:"department,omitempty"`
}

// Credits holds cast and crew.
type Credits struct {
	Cast []CastMember `json:"cast,omitempty"`
	Crew []CrewMember `json:"crew,omitempty"`
}

// Video is a trailer, teaser or clip.
type Video struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

// ContentRating is a regional TV age rating.
type ContentRating struct {
	Country string `json:"iso_3166_1"`
	Rating  string `json:"rating"`
}

// Details is a full movie or TV record with its related sub-resources.
type Details struct {
	domain.MediaItem `json:",inline"`

	Tagline          string `json:"tagline,omitempty"`
	Status           string `json:"status,omitempty"`
	Homepage         string `json:"homepage,omitempty"`
	Runtime          int    `json:"runtime,omitzero"`
	EpisodeRunTime   []int  `json:"episode_run_time,omitempty"`
	NumberOfSeasons  int    `json:"number_of_seasons,omitzero"`
	NumberOfEpisodes int    `json:"number_of_episodes,omitzero"`

	Credits         Credits     `json:"credits,omitzero"`
	Videos          VideoList   `json:"videos,omitzero"`
	Similar         domain.Page `json:"similar,omitzero"`
	Recommendations domain.Page `json:"recommendations,omitzero"`
	ContentRatings  RatingList  `json:"content_ratings,omitzero"`
}

// VideoList wraps the videos sub-resource.
type VideoList struct {
	Results []Video `json:"results,omitempty"`
}

// RatingList wraps the content_ratings sub-resource.
type RatingList struct {
	Results []ContentRating `json:"results,omitempty"`
}

// Trailer returns the first YouTube trailer, if any.
func (d *Details) Trailer() (Video, bool) {
	for _, v := range d.Videos.Results {
		if v.Site == "YouTube" && v.Type == "Trailer" {
			return v, true
		}
	}
	return Video{}, false
}

// Details fetches a movie or TV show with credits, videos, similar titles
// and recommendations; TV shows also carry content ratings.
func (c *Client) Details(ctx context.Context, mediaType domain.MediaType, id int64) (*Details, error) {
	appended := "credits,videos,similar,recommendations"
	switch mediaType {
	case domain.MediaTypeMovie:
	case domain.MediaTypeTV:
		appended += ",content_ratings"
	default:
		return nil, wrapError("details", string(mediaType), 0, ErrBadRequest)
	}

	path := "/" + string(mediaType) + "/" + strconv.FormatInt(id, 10)
	var out Details
	if err := c.get(ctx, "details", path, url.Values{"append_to_response": {appended}}, &out); err != nil {
		return nil, err
	}
	out.MediaType = mediaType
	stampMediaType(out.Similar.Results, mediaType)
	stampMediaType(out.Recommendations.Results, mediaType)
	return &out, nil
}
