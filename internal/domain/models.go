package domain

import (
	"strings"
	"time"
)

// Post - запись блога. Author и Category - непрозрачные ссылки на сущности
// других сервисов.
type Post struct {
	ID        string    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Title     string    `json:"title" gorm:"type:varchar(255);not null"`
	Content   string    `json:"content" gorm:"type:text;not null;default:''"`
	Author    string    `json:"author" gorm:"type:varchar(255);not null;index"`
	Category  string    `json:"category" gorm:"type:varchar(255);not null;index"`
	Slug      string    `json:"slug" gorm:"type:varchar(512);not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null;default:now();index"`
}

// PostPatch содержит изменяемые поля поста. Nil, пустые и состоящие
// из одних пробелов значения не меняют сохраненное поле.
type PostPatch struct {
	Title   *string
	Content *string
}

// present сообщает, задает ли s новое значение поля.
func present(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

// Fields возвращает поля, которые патч действительно меняет, по имени колонки.
func (pp PostPatch) Fields() map[string]string {
	fields := make(map[string]string, 2)
	if present(pp.Title) {
		fields["title"] = *pp.Title
	}
	if present(pp.Content) {
		fields["content"] = *pp.Content
	}
	return fields
}

// Apply переносит заданные поля патча в p.
func (pp PostPatch) Apply(p *Post) {
	if present(pp.Title) {
		p.Title = *pp.Title
	}
	if present(pp.Content) {
		p.Content = *pp.Content
	}
}

// Empty сообщает, что патч ничего не изменит.
func (pp PostPatch) Empty() bool {
	return !present(pp.Title) && !present(pp.Content)
}

// ListFilter выбирает страницу постов. Пустой Category подходит ко всем постам.
type ListFilter struct {
	Category string
	Offset   int
	Limit    int
}
