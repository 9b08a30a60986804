// Package dto はrecipeフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

import "recipe_backend/internal/feature/recipe/domain/entity"

// AttributeReq はタグ・材料の作成／更新リクエストです。
// レシピのtags/ingredients要素としても使われます。
type AttributeReq struct {
	Name string `json:"name" binding:"required,max=255"`
}

// AttributePatchReq は PATCH /api/tags/{id}/ などのリクエストです。
// nameを省略すると変更しません。
type AttributePatchReq struct {
	Name *string `json:"name" binding:"omitempty,max=255"`
}

// AttributeRes はタグ・材料のレスポンスです。
type AttributeRes struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// NewAttributeRes converts an attribute into its response.
func NewAttributeRes(a entity.Attribute) AttributeRes {
	return AttributeRes{ID: a.ID, Name: a.Name}
}

// NewAttributeList converts attributes into responses. nil becomes an empty list.
func NewAttributeList(attrs []entity.Attribute) []AttributeRes {
	out := make([]AttributeRes, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, NewAttributeRes(a))
	}
	return out
}

func names(reqs []AttributeReq) []string {
	if reqs == nil {
		return nil
	}
	out := make([]string, len(reqs))
	for i, r := range reqs {
		out[i] = r.Name
	}
	return out
}

func namesPtr(reqs *[]AttributeReq) *[]string {
	if reqs == nil {
		return nil
	}
	n := names(*reqs)
	if n == nil {
		n = []string{}
	}
	return &n
}
