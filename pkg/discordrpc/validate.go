package discordrpc

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/small-frappuccino/richpresence/pkg/errors"
)

// ValidateClientID trims id and checks it is a Discord snowflake.
func ValidateClientID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.Validation("discordrpc", "start", "client id is required")
	}
	ts, err := discordgo.SnowflakeTimestamp(id)
	if err != nil || ts.Unix() <= discordEpoch {
		return "", errors.Validation("discordrpc", "start", fmt.Sprintf("client id %q is not a valid Discord application id", id))
	}
	return id, nil
}

// discordEpoch is 2015-01-01T00:00:00Z in unix seconds.
const discordEpoch = 1420070400
