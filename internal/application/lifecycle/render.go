package lifecycle

import (
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/execution-hub/contest-hub/internal/domain/contest"
)

const noWinnersText = "No valid entrants, so no winners could be drawn."

// RenderOpen builds the announcement shown while a contest is active.
func RenderOpen(c *contest.Contest, now time.Time) contest.Content {
	var body strings.Builder
	if c.Description != "" {
		body.WriteString(c.Description)
		body.WriteString("\n\n")
	}
	body.WriteString("Ends ")
	body.WriteString(humanize.RelTime(c.EndsAt, now, "ago", "from now"))

	fields := []contest.Field{
		{Name: "Winners", Value: strconv.Itoa(c.WinnerCount)},
		{Name: "Ends at", Value: c.EndsAt.UTC().Format(time.RFC1123)},
	}
	if c.HostID != "" {
		fields = append(fields, contest.Field{Name: "Hosted by", Value: c.HostID})
	}
	if c.Requirement != "" {
		fields = append(fields, contest.Field{Name: "Requirement", Value: c.Requirement})
	}

	content := contest.Content{
		ContestID: c.ID,
		Channel:   c.Channel,
		Title:     c.Title,
		Body:      body.String(),
		Fields:    fields,
		ImageURL:  c.ImageURL,
		Thumbnail: c.ThumbnailURL,
	}
	if c.Mentions.Everyone || len(c.Mentions.Roles) > 0 || len(c.Mentions.Users) > 0 {
		m := c.Mentions
		content.Mentions = &m
	}
	return content
}

// RenderResult builds the closed announcement carrying the winners.
func RenderResult(c *contest.Contest) contest.Content {
	content := contest.Content{
		ContestID: c.ID,
		Channel:   c.Channel,
		Title:     c.Title,
		Body:      winnersText(c.Winners),
		ImageURL:  c.ImageURL,
		Thumbnail: c.ThumbnailURL,
		Closed:    true,
		Fields: []contest.Field{
			{Name: "Winners", Value: strconv.Itoa(len(c.Winners)) + "/" + strconv.Itoa(c.WinnerCount)},
		},
	}
	if c.EndedAt != nil {
		content.Fields = append(content.Fields, contest.Field{Name: "Ended at", Value: c.EndedAt.UTC().Format(time.RFC1123)})
	}
	return content
}

// RenderReroll builds the follow-up message announcing a redraw.
func RenderReroll(c *contest.Contest, rec contest.RerollRecord) contest.Content {
	return contest.Content{
		ContestID: c.ID,
		Channel:   c.Announcement.Channel,
		Title:     "Reroll: " + c.Title,
		Body:      winnersText(rec.Winners),
		Closed:    true,
		Fields: []contest.Field{
			{Name: "Requested", Value: strconv.Itoa(rec.Count)},
			{Name: "Rerolled at", Value: rec.At.UTC().Format(time.RFC1123)},
		},
	}
}

func winnersText(winners []string) string {
	if len(winners) == 0 {
		return noWinnersText
	}
	return "Congratulations " + strings.Join(winners, ", ") + "!"
}
