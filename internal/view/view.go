// Package view 把處理器提供的資料渲染成 HTML。
package view

import (
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer 是處理器與呈現層之間的邊界：處理器只提供狀態碼、模板名稱與資料
type Renderer interface {
	Render(c *gin.Context, status int, name string, data gin.H)
}

// HTMLRenderer 以內嵌的 html/template 透過 gin 渲染頁面
type HTMLRenderer struct {
	templates *template.Template
}

func NewHTMLRenderer() (*HTMLRenderer, error) {
	tmpl, err := template.New("").Funcs(Funcs()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &HTMLRenderer{templates: tmpl}, nil
}

// Install 把模板掛到 gin engine 上
func (r *HTMLRenderer) Install(engine *gin.Engine) {
	engine.SetHTMLTemplate(r.templates)
}

func (r *HTMLRenderer) Render(c *gin.Context, status int, name string, data gin.H) {
	c.HTML(status, name, data)
}

// Funcs 是模板可用的輔助函式
func Funcs() template.FuncMap {
	return template.FuncMap{
		"timesince": func(t time.Time) string { return timeSince(t, time.Now()) },
		"initial": func(s string) string {
			if s == "" {
				return "?"
			}
			return string([]rune(s)[:1])
		},
	}
}

func timeSince(t, now time.Time) string {
	d := now.Sub(t)
	if d < time.Minute {
		return "just now"
	}

	units := []struct {
		name string
		size time.Duration
	}{
		{"year", 365 * 24 * time.Hour},
		{"month", 30 * 24 * time.Hour},
		{"week", 7 * 24 * time.Hour},
		{"day", 24 * time.Hour},
		{"hour", time.Hour},
		{"minute", time.Minute},
	}
	for _, u := range units {
		if n := int(d / u.size); n > 0 {
			if n == 1 {
				return fmt.Sprintf("1 %s ago", u.name)
			}
			return fmt.Sprintf("%d %ss ago", n, u.name)
		}
	}
	return "just now"
}
