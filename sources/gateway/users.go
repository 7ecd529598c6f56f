package gateway

import (
	"context"
	"fmt"
	"net/http"
)

type UpsertUserRequest struct {
	TelegramID int64  `json:"tg_id"`
	Username   string `json:"username"`
	FirstName  string `json:"first_name"`
	Language   string `json:"language"`
}

func (g *Gateway) GetUser(ctx context.Context, tgID int64) (*User, error) {
	var user User
	err := g.do(ctx, requestSpec{
		op:     "users.get",
		method: http.MethodGet,
		path:   fmt.Sprintf("/api/v1/users/%d", tgID),
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (g *Gateway) UpsertUser(ctx context.Context, req UpsertUserRequest) (*User, error) {
	var user User
	err := g.do(ctx, requestSpec{
		op:     "users.upsert",
		method: http.MethodPut,
		path:   fmt.Sprintf("/api/v1/users/%d", req.TelegramID),
		body:   req,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (g *Gateway) UpdateUserLanguage(ctx context.Context, tgID int64, language string) error {
	return g.do(ctx, requestSpec{
		op:     "users.language",
		method: http.MethodPatch,
		path:   fmt.Sprintf("/api/v1/users/%d/language", tgID),
		body:   map[string]string{"language": language},
	}, nil)
}
