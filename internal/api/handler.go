package api

import (
	"context"
	"net/http"

	"tourkorea/explorer/internal/domain"
	"tourkorea/explorer/internal/geo"
	"tourkorea/explorer/internal/pager"
	"tourkorea/explorer/internal/repository"
	"tourkorea/explorer/internal/service"

	"github.com/gin-gonic/gin"
)

// Tours is the part of the service layer the HTTP surface needs.
type Tours interface {
	List(ctx context.Context, q service.ListQuery) (*domain.Page[service.Tour], error)
	Collect(ctx context.Context, q service.ListQuery, pages int) (pager.Snapshot[service.Tour], error)
	Detail(ctx context.Context, contentID string, contentType domain.ContentType) (*service.DetailBundle, error)
	AreaCodes(ctx context.Context, areaCode string) ([]domain.AreaCode, error)
	PetInfo(ctx context.Context, ids []string) map[string]*domain.PetInfoRecord
	AddBookmark(ctx context.Context, b *repository.Bookmark) (*repository.Bookmark, error)
	RemoveBookmark(ctx context.Context, userID, contentID string) error
	ListBookmarks(ctx context.Context, userID string) ([]repository.Bookmark, error)
}

type Handler struct {
	tours Tours
}

func NewHandler(tours Tours) *Handler {
	return &Handler{tours: tours}
}

type listRequest struct {
	Keyword       string `form:"keyword" binding:"max=100"`
	AreaCode      string `form:"areaCode" binding:"omitempty,areacode"`
	ContentTypeID string `form:"contentTypeId" binding:"omitempty,contenttype"`
	NumOfRows     int    `form:"numOfRows,default=20" binding:"min=1,max=100"`
	PageNo        int    `form:"pageNo,default=1" binding:"min=1"`
	PetFriendly   bool   `form:"petFriendly"`
}

// ListTours serves GET /api/tours.
func (h *Handler) ListTours(c *gin.Context) {
	var req listRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		writeBadRequest(c, err)
		return
	}

	page, err := h.tours.List(c.Request.Context(), service.ListQuery{
		Keyword:       req.Keyword,
		AreaCode:      req.AreaCode,
		ContentTypeID: domain.ContentType(req.ContentTypeID),
		NumOfRows:     req.NumOfRows,
		PageNo:        req.PageNo,
		PetFriendly:   req.PetFriendly,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

type browseRequest struct {
	Keyword       string `form:"keyword" binding:"max=100"`
	AreaCode      string `form:"areaCode" binding:"omitempty,areacode"`
	ContentTypeID string `form:"contentTypeId" binding:"omitempty,contenttype"`
	NumOfRows     int    `form:"numOfRows,default=20" binding:"min=1,max=100"`
	Pages         int    `form:"pages,default=3" binding:"min=1,max=10"`
	PetFriendly   bool   `form:"petFriendly"`
}

// BrowseTours serves GET /api/tours/browse: the first pages of a listing accumulated in order.
func (h *Handler) BrowseTours(c *gin.Context) {
	var req browseRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		writeBadRequest(c, err)
		return
	}

	snap, err := h.tours.Collect(c.Request.Context(), service.ListQuery{
		Keyword:       req.Keyword,
		AreaCode:      req.AreaCode,
		ContentTypeID: domain.ContentType(req.ContentTypeID),
		NumOfRows:     req.NumOfRows,
		PetFriendly:   req.PetFriendly,
	}, req.Pages)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}

type detailRequest struct {
	ContentTypeID string `form:"contentTypeId" binding:"omitempty,contenttype"`
}

// GetTour serves GET /api/tours/:id.
func (h *Handler) GetTour(c *gin.Context) {
	var req detailRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		writeBadRequest(c, err)
		return
	}

	bundle, err := h.tours.Detail(c.Request.Context(), c.Param("id"), domain.ContentType(req.ContentTypeID))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, bundle)
}

type areaRequest struct {
	AreaCode string `form:"areaCode" binding:"omitempty,areacode"`
}

// ListAreas serves GET /api/areas; with areaCode it lists that region's districts.
func (h *Handler) ListAreas(c *gin.Context) {
	var req areaRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		writeBadRequest(c, err)
		return
	}

	areas, err := h.tours.AreaCodes(c.Request.Context(), req.AreaCode)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": areas, "totalCount": len(areas)})
}

type petInfoRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,max=100,dive,numeric"`
}

// PetInfo serves POST /api/tours/pet-info. Ids without pet data map to null.
func (h *Handler) PetInfo(c *gin.Context) {
	var req petInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, err)
		return
	}

	c.JSON(http.StatusOK, h.tours.PetInfo(c.Request.Context(), req.IDs))
}

type geoRequest struct {
	MapX string `form:"mapx"`
	MapY string `form:"mapy"`
}

type geoResponse struct {
	geo.Point
	Fallback bool `json:"fallback"`
}

// Convert serves GET /api/geo. Unusable input answers with the fallback point, never an error.
func (h *Handler) Convert(c *gin.Context) {
	var req geoRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		writeBadRequest(c, err)
		return
	}

	p := geo.ToGeographic(req.MapX, req.MapY)
	c.JSON(http.StatusOK, geoResponse{Point: p, Fallback: p == geo.Fallback})
}

type bookmarkRequest struct {
	ContentID     string `json:"contentId" binding:"required,numeric"`
	ContentTypeID string `json:"contentTypeId" binding:"omitempty,contenttype"`
	Title         string `json:"title" binding:"required,max=200"`
}

// AddBookmark serves POST /api/users/:userId/bookmarks.
func (h *Handler) AddBookmark(c *gin.Context) {
	var req bookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, err)
		return
	}

	saved, err := h.tours.AddBookmark(c.Request.Context(), &repository.Bookmark{
		UserID:        c.Param("userId"),
		ContentID:     req.ContentID,
		ContentTypeID: domain.ContentType(req.ContentTypeID),
		Title:         req.Title,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, saved)
}

// RemoveBookmark serves DELETE /api/users/:userId/bookmarks/:contentId.
func (h *Handler) RemoveBookmark(c *gin.Context) {
	if err := h.tours.RemoveBookmark(c.Request.Context(), c.Param("userId"), c.Param("contentId")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListBookmarks serves GET /api/users/:userId/bookmarks.
func (h *Handler) ListBookmarks(c *gin.Context) {
	bookmarks, err := h.tours.ListBookmarks(c.Request.Context(), c.Param("userId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": bookmarks, "totalCount": len(bookmarks)})
}
