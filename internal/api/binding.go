// internal/api/binding.go
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gurkanbulca/taskboard/internal/apperror"
	"github.com/gurkanbulca/taskboard/internal/models"
	"github.com/gurkanbulca/taskboard/internal/service"
)

type categoryBody struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

func (b categoryBody) draft() models.CategoryDraft {
	return models.CategoryDraft{Name: b.Name, Description: b.Description, Color: b.Color}
}

type tagBody struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

func (b tagBody) draft() models.TagDraft {
	return models.TagDraft{Name: b.Name, Color: b.Color}
}

type taskBody struct {
	Title       *string                    `json:"title"`
	Description *string                    `json:"description"`
	Status      *models.TaskStatus         `json:"status"`
	Priority    *int                       `json:"priority"`
	DueDate     models.Optional[dueDate]   `json:"due_date"`
	CategoryID  models.Optional[uuid.UUID] `json:"category_id"`
	TagIDs      *[]uuid.UUID               `json:"tag_ids"`
}

func (b taskBody) input() service.TaskInput {
	d := models.TaskDraft{
		Title:       b.Title,
		Description: b.Description,
		Status:      b.Status,
		Priority:    b.Priority,
		CategoryID:  b.CategoryID,
	}
	if b.DueDate.Set {
		d.DueDate = models.Null[time.Time]()
		if b.DueDate.Value != nil {
			d.DueDate = models.Some(time.Time(*b.DueDate.Value))
		}
	}
	return service.TaskInput{Draft: d, TagIDs: b.TagIDs}
}

type userBody struct {
	Email                *string `json:"email"`
	Name                 *string `json:"name"`
	Password             *string `json:"password"`
	PasswordConfirmation *string `json:"password_confirmation"`
}

func (b userBody) register() service.RegisterInput {
	in := service.RegisterInput{PasswordConfirmation: b.PasswordConfirmation}
	if b.Email != nil {
		in.Email = *b.Email
	}
	if b.Name != nil {
		in.Name = *b.Name
	}
	if b.Password != nil {
		in.Password = *b.Password
	}
	return in
}

func (b userBody) update() service.UpdateUserInput {
	return service.UpdateUserInput{
		Email:                b.Email,
		Name:                 b.Name,
		Password:             b.Password,
		PasswordConfirmation: b.PasswordConfirmation,
	}
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshBody struct {
	RefreshToken string `json:"refresh_token"`
}

// dueDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates, the
// latter as midnight UTC.
type dueDate time.Time

func (d *dueDate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			*d = dueDate(t.UTC())
			return nil
		}
	}
	return errors.New("due_date must be an RFC 3339 timestamp or a YYYY-MM-DD date")
}

// bindWrapped decodes the object under key, as in {"task": {...}}. A
// missing, null, non-object or empty wrapper is a malformed request.
func bindWrapped(c *gin.Context, key string, dest any) error {
	var wrapper map[string]json.RawMessage
	if err := decodeBody(c.Request, &wrapper); err != nil {
		return err
	}
	raw := wrapper[key]
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || len(fields) == 0 {
		return apperror.Malformed("param is missing or the value is empty: " + key)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return apperror.Malformed("invalid " + key + ": " + err.Error())
	}
	return nil
}

// bindJSON decodes an unwrapped body.
func bindJSON(c *gin.Context, dest any) error {
	return decodeBody(c.Request, dest)
}

func decodeBody(r *http.Request, dest any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return apperror.Malformed("request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.Malformed("request body is required")
		}
		return apperror.Malformed("invalid JSON body: " + err.Error())
	}
	return nil
}

// pathID parses the :id parameter. An unparsable id cannot name a row, so
// it reads as not found.
func pathID(c *gin.Context, resource string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperror.NotFound(resource)
	}
	return id, nil
}
