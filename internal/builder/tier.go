package builder

import (
	"fmt"
	"strings"

	"github.com/canoeh/nocs/internal/models"
)

// UnknownTierLevel is the level of a code whose TEER digit is not 0-5.
const UnknownTierLevel = -1

var tierLabels = [...]string{
	"Management occupations",
	"University degree",
	"College diploma (2+ years) or apprenticeship",
	"College diploma (<2 years) or apprenticeship",
	"High school diploma",
	"Short work demonstration or none",
}

// TierFor derives the TEER category from the second digit of the code left-padded with
// zeros to five characters.
func TierFor(code string) models.Tier {
	if len(code) < 5 {
		code = strings.Repeat("0", 5-len(code)) + code
	}
	d := code[1]
	if d < '0' || int(d-'0') >= len(tierLabels) {
		return models.Tier{Level: UnknownTierLevel, Label: "Unknown TEER level"}
	}
	level := int(d - '0')
	return models.Tier{Level: level, Label: fmt.Sprintf("TEER %d - %s", level, tierLabels[level])}
}
