package admin

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"telegram-notifier/internal/misc"
	"telegram-notifier/internal/model"
)

const (
	emptyBotKey   = "Bot Key must not be empty"
	invalidBotKey = "Bot Key must be a valid token"
	settingsSaved = "Settings saved"
)

var (
	botKeyPattern = regexp.MustCompile(`^[0-9]{8,10}:[a-zA-Z0-9_-]{35}$`)
	stripPolicy   = bluemonday.StrictPolicy()
)

// ValidateBotKey cleans up a submitted bot key and checks it looks like a Telegram token
func ValidateBotKey(input string) (string, error) {
	botKey := strings.TrimSpace(stripPolicy.Sanitize(input))
	if botKey == "" {
		return "", misc.NewValidationError("bot_key", emptyBotKey)
	}
	if !botKeyPattern.MatchString(botKey) {
		return "", misc.NewValidationError("bot_key", invalidBotKey)
	}
	return botKey, nil
}

// SaveOptions handles the settings form. A rejected bot key keeps the stored one
// and the page is rendered again with the error. A submitted gf_list replaces the enabled forms.
// Success redirects back to the page.
func SaveOptions(ctx *gin.Context) {
	db := ctx.MustGet("DB").(*gorm.DB)
	options := *ctx.MustGet("Options").(*model.PluginOptions)
	var rejected *Notice

	if values, submitted := ctx.GetPostFormArray("gf_list"); submitted {
		gfList, err := parseFormIDs(values)
		if err != nil {
			renderPage(ctx, http.StatusUnprocessableEntity, &Notice{Status: "error", Message: err.Error()})
			return
		}
		options.GFList = gfList
	}

	if botKey, err := ValidateBotKey(ctx.PostForm("bot_key")); err != nil {
		rejected = &Notice{Status: "error", Message: err.Error()}
	} else {
		options.BotKey = &botKey
	}

	if err := model.SetOptions(db, &options); err != nil {
		misc.Logger("admin").Error("cannot save options", "error", err)
		renderPage(ctx, http.StatusInternalServerError, &Notice{Status: "error", Message: "Settings could not be saved"})
		return
	}
	if rejected != nil {
		ctx.Set("Options", &options)
		renderPage(ctx, http.StatusUnprocessableEntity, rejected)
		return
	}
	redirectWithNotice(ctx, settingsSaved, "success")
}

func parseFormIDs(values []string) ([]int, error) {
	ids := make([]int, 0, len(values))
	for _, value := range values {
		if value == "" {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || id <= 0 {
			return nil, misc.NewValidationError("gf_list", "form ids must be positive integers")
		}
		ids = append(ids, id)
	}
	return ids, nil
}
