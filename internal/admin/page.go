package admin

import (
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"telegram-notifier/internal/misc"
	"telegram-notifier/internal/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Paths the rendered forms post to, relative to the admin root
const (
	ActionPath  = "/action"
	OptionsPath = "/options"
)

// Notice is a dismissible message box at the top of the page
type Notice struct {
	Status  string
	Message string
}

var noticeStatuses = map[string]bool{
	"success": true,
	"error":   true,
	"warning": true,
	"info":    true,
}

type formItem struct {
	ID    int
	Title string
}

type pageData struct {
	Notice         *Notice
	SettingsNotice *Notice
	BotKey         string
	EnabledForms   []formItem
	AvailableForms []*model.Form
	InMailingList  []*model.Subscriber
	Others         []*model.Subscriber
	OrderBy        string
	Order          string
	ActionURL      string
	OptionsURL     string
	PageURL        string
}

type tableData struct {
	Subscribers []*model.Subscriber
	Action      string
	ButtonText  string
	ActionURL   string
	page        *pageData
}

// Templates parses the admin page templates, to be installed with gin's SetHTMLTemplate
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.tmpl"))
}

// Table returns one of the two subscriber tables
func (data *pageData) Table(inMailingList bool) *tableData {
	if inMailingList {
		return &tableData{
			Subscribers: data.InMailingList,
			Action:      "remove",
			ButtonText:  "Remove from the mailing list",
			ActionURL:   data.ActionURL,
			page:        data,
		}
	}
	return &tableData{
		Subscribers: data.Others,
		Action:      "add",
		ButtonText:  "Add to the mailing list",
		ActionURL:   data.ActionURL,
		page:        data,
	}
}

// SortURL links a column header, clicking the current sort column flips the direction
func (table *tableData) SortURL(column string) string {
	order := "asc"
	if table.page.OrderBy == column && table.page.Order == "asc" {
		order = "desc"
	}
	query := url.Values{}
	query.Set("orderby", column)
	query.Set("order", order)
	return table.page.PageURL + "?" + query.Encode()
}

// Page renders the settings page
func Page(ctx *gin.Context) {
	renderPage(ctx, http.StatusOK, nil)
}

// MissingFormBuilder is the only page served when the form platform integration is off
func MissingFormBuilder(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "missing.tmpl", &Notice{
		Status:  "warning",
		Message: "Telegram Notifier is not working, install the GravityForms plugin",
	})
}

func renderPage(ctx *gin.Context, status int, settingsNotice *Notice) {
	db := ctx.MustGet("DB").(*gorm.DB)
	options := ctx.MustGet("Options").(*model.PluginOptions)
	data, err := loadPage(db, options, ctx.Query("orderby"), ctx.Query("order"))
	if err != nil {
		misc.Logger("admin").Error("cannot render settings page", "error", err)
		ctx.String(http.StatusInternalServerError, "cannot load the settings page")
		return
	}
	data.PageURL = pageRoot(ctx)
	data.ActionURL = pageRoot(ctx) + ActionPath
	data.OptionsURL = pageRoot(ctx) + OptionsPath
	data.Notice = noticeFromQuery(ctx)
	data.SettingsNotice = settingsNotice
	ctx.HTML(status, "page.tmpl", data)
}

func loadPage(db *gorm.DB, options *model.PluginOptions, orderBy string, order string) (*pageData, error) {
	if order != "desc" {
		order = "asc"
	}
	if orderBy != "username" {
		orderBy = "full_name"
	}
	data := &pageData{OrderBy: orderBy, Order: order}
	if options.BotKey != nil {
		data.BotKey = *options.BotKey
	}
	var err error
	if data.InMailingList, err = model.ListSubscribers(db, true, orderBy, order); err != nil {
		return nil, err
	}
	if data.Others, err = model.ListSubscribers(db, false, orderBy, order); err != nil {
		return nil, err
	}
	for _, id := range options.GFList {
		form, err := model.FindForm(db, id)
		if err != nil {
			return nil, err
		}
		item := formItem{ID: id}
		if form != nil {
			item.Title = form.Title
		}
		data.EnabledForms = append(data.EnabledForms, item)
	}
	forms, err := model.ListForms(db)
	if err != nil {
		return nil, err
	}
	for _, form := range forms {
		if !options.HasForm(form.ID) {
			data.AvailableForms = append(data.AvailableForms, form)
		}
	}
	return data, nil
}

func noticeFromQuery(ctx *gin.Context) *Notice {
	message := ctx.Query("notice_message")
	if message == "" {
		return nil
	}
	status := ctx.Query("notice_status")
	if !noticeStatuses[status] {
		status = "info"
	}
	return &Notice{Status: status, Message: message}
}

// the admin root, whatever group the admin routes are mounted on
func pageRoot(ctx *gin.Context) string {
	path := ctx.FullPath()
	path = strings.TrimSuffix(path, ActionPath)
	return strings.TrimSuffix(path, OptionsPath)
}
