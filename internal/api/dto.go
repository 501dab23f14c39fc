package api

import (
	"github.com/mcpar-land/quill/internal/index"
	"github.com/mcpar-land/quill/internal/postservice"
)

// PostDetail is the full post response type (aliased from the domain layer).
type PostDetail = postservice.PostDetail

// PostListItem is a lightweight item in a list response (aliased from the domain layer).
type PostListItem = postservice.PostListItem

// PostListResponse wraps paginated post listings.
type PostListResponse struct {
	Posts []PostListItem `json:"posts" validate:"required"`
	Total int            `json:"total" example:"42" validate:"required"`
}

// SearchResult is a single search hit in the API response.
type SearchResult = index.SearchResult

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}

// TagsResponse wraps the tag list.
type TagsResponse struct {
	Tags []index.TagCount `json:"tags" validate:"required"`
}

// TagPostsResponse lists the posts carrying one tag.
type TagPostsResponse struct {
	Tag   string   `json:"tag" example:"go" validate:"required"`
	Posts []string `json:"posts" validate:"required"`
}
