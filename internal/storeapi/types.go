package storeapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// flexID accepts an id sent as a JSON string or number.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*f = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(strings.TrimSpace(s))
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("id must be a string or number: %w", err)
		}
		*f = flexID(n.String())
	}
	return nil
}

// firstID returns the first non-empty id.
func firstID(ids ...flexID) string {
	for _, id := range ids {
		if id != "" {
			return string(id)
		}
	}
	return ""
}

// flexTime accepts RFC 3339 timestamps and tolerates empty or malformed
// values as the zero time.
type flexTime time.Time

func (t *flexTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil || s == "" {
		*t = flexTime(time.Time{})
		return nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		*t = flexTime(time.Time{})
		return nil
	}
	*t = flexTime(parsed)
	return nil
}

// identified is a wire object that carries its own id.
type identified interface {
	ident() string
}

// ref is a reference that the backend either populates with the full object
// or leaves as a bare id.
type ref[T identified] struct {
	ID  string
	Obj *T
}

func (r *ref[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '{' {
		var obj T
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		r.Obj = &obj
		r.ID = obj.ident()
		return nil
	}
	var id flexID
	if err := id.UnmarshalJSON(b); err != nil {
		return err
	}
	r.ID = string(id)
	return nil
}

// resolve returns the first ref with a usable id.
func resolve[T identified](refs ...*ref[T]) *ref[T] {
	for _, r := range refs {
		if r != nil && r.ID != "" {
			return r
		}
	}
	return nil
}

type wireCategory struct {
	ID          flexID `json:"id"`
	MongoID     flexID `json:"_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (c wireCategory) ident() string { return firstID(c.MongoID, c.ID) }

type wireProduct struct {
	ID          flexID              `json:"id"`
	MongoID     flexID              `json:"_id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Price       decimal.NullDecimal `json:"price"`
	ImageURL    string              `json:"imageUrl"`
	Image       string              `json:"image"`
	Stock       int                 `json:"stock"`
	Category    *ref[wireCategory]  `json:"category"`
	CreatedAt   flexTime            `json:"createdAt"`
	UpdatedAt   flexTime            `json:"updatedAt"`
}

func (p wireProduct) ident() string { return firstID(p.MongoID, p.ID) }

type wireUser struct {
	ID        flexID   `json:"id"`
	MongoID   flexID   `json:"_id"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	Role      string   `json:"role"`
	IsBlocked bool     `json:"isBlocked"`
	CreatedAt flexTime `json:"createdAt"`
}

func (u wireUser) ident() string { return firstID(u.MongoID, u.ID) }

// wireCartRow is one backend cart row. The product reference has lived under
// three different keys across backend versions.
type wireCartRow struct {
	Product   *ref[wireProduct]   `json:"product"`
	DessertID *ref[wireProduct]   `json:"dessertId"`
	ProductID *ref[wireProduct]   `json:"productId"`
	Quantity  int                 `json:"quantity"`
	Name      string              `json:"name"`
	Price     decimal.NullDecimal `json:"price"`
}

type wireOrderItem struct {
	Product   *ref[wireProduct]   `json:"product"`
	DessertID *ref[wireProduct]   `json:"dessertId"`
	ProductID *ref[wireProduct]   `json:"productId"`
	Quantity  int                 `json:"quantity"`
	Name      string              `json:"name"`
	Price     decimal.NullDecimal `json:"price"`
}

type wireOrder struct {
	ID          flexID              `json:"id"`
	MongoID     flexID              `json:"_id"`
	UserID      *ref[wireUser]      `json:"userId"`
	User        *ref[wireUser]      `json:"user"`
	Items       []wireOrderItem     `json:"items"`
	Total       decimal.NullDecimal `json:"total"`
	TotalAmount decimal.NullDecimal `json:"totalAmount"`
	TotalPrice  decimal.NullDecimal `json:"totalPrice"`
	Status      string              `json:"status"`
	CreatedAt   flexTime            `json:"createdAt"`
	UpdatedAt   flexTime            `json:"updatedAt"`
}

func (o wireOrder) ident() string { return firstID(o.MongoID, o.ID) }

type wireLogin struct {
	Token string    `json:"token"`
	User  *wireUser `json:"user"`
}

type wireError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Request bodies.

type addCartItemRequest struct {
	DessertID string `json:"dessertId"`
	Quantity  int    `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type orderLine struct {
	DessertID string `json:"dessertId"`
	Quantity  int    `json:"quantity"`
}

type createOrderRequest struct {
	Items []orderLine `json:"items"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type passwordRequest struct {
	Password string `json:"password"`
}

type statusRequest struct {
	Status string `json:"status"`
}
