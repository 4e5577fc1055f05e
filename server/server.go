// Copyright 2025 The Geolink Authors
// SPDX-License-Identifier: Apache-2.0

// Package server exposes the GE0 codec and the place store over HTTP.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nahuelc/geolink/ge0"
	"github.com/nahuelc/geolink/geocode"
	"github.com/nahuelc/geolink/places"
	"github.com/nahuelc/geolink/spatial"
	"github.com/nahuelc/geolink/utils/htmlutils"
)

type Server struct {
	repo     places.Repository
	geocoder geocode.ReverseGeocoder
}

// New builds a Server. The reverse geocoder is optional: it needs a
// Google Maps API key from the environment or, failing that, from
// Application Default Credentials; without one the geocoding endpoint
// answers 503 and everything else still works.
func New(repo places.Repository, userAgent string) *Server {
	apiKey := os.Getenv("GOOGLE_MAPS_API_KEY")
	if apiKey == "" {
		log.Println("GOOGLE_MAPS_API_KEY is not set. Attempting to retrieve via ADC...")

		var err error

		apiKey, err = geocode.APIKeyFromADC(context.Background())
		if err != nil {
			log.Printf("Failed to retrieve API key via ADC: %v", err)
			log.Print("Reverse geocoding disabled.")
		} else {
			log.Println("Successfully retrieved Google Maps API Key via ADC")
		}
	}

	var geocoder geocode.ReverseGeocoder
	if apiKey != "" {
		geocoder = geocode.NewGoogleMapsGeocoder(apiKey, userAgent)
	}

	return &Server{
		repo:     repo,
		geocoder: geocoder,
	}
}

// Run registers the routes and serves until the listener fails.
func (s *Server) Run(addr string) error {
	r := gin.Default()
	s.register(r)

	return r.Run(addr)
}

func (s *Server) register(r *gin.Engine) {
	r.GET("/api/decode", s.decodeLink)
	r.POST("/api/parse", s.parseSharedText)
	r.GET("/api/places", s.listPlaces)
	r.POST("/api/places", s.createPlace)
	r.GET("/api/places/clusters", s.listClusters)
	r.GET("/api/places/:id", s.getPlace)
	r.DELETE("/api/places/:id", s.deletePlace)
	r.GET("/api/geocode/reverse", s.reverseGeocode)
}

func (s *Server) decodeLink(ctx *gin.Context) {
	rawURL := ctx.Query("url")
	if rawURL == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "url query parameter is required"})

		return
	}

	loc, err := ge0.Decode(rawURL)
	if err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, loc)
}

func (s *Server) parseSharedText(ctx *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(ctx.Writer, ctx.Request.Body, 1<<20))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "reading request body"})

		return
	}

	text := string(body)

	if strings.HasPrefix(ctx.ContentType(), "text/html") {
		rr, err := htmlutils.AsReader(strings.NewReader(text), ctx.GetHeader("Content-Type"))
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

			return
		}

		text, err = htmlutils.Text(rr)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

			return
		}
	}

	shared := ge0.ParseSharedText(text)
	if shared == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "no location found"})

		return
	}

	ctx.JSON(http.StatusOK, shared)
}

func (s *Server) listPlaces(ctx *gin.Context) {
	var name, visibility *string

	if v := ctx.Query("name"); v != "" {
		name = &v
	}

	if v := ctx.Query("visibility"); v != "" {
		visibility = &v
	}

	limit := intQuery(ctx, "limit", 100)
	offset := intQuery(ctx, "offset", 0)

	placeList, err := s.repo.List(name, visibility, limit, offset)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	if placeList == nil {
		placeList = []*places.Place{}
	}

	ctx.JSON(http.StatusOK, placeList)
}

func (s *Server) createPlace(ctx *gin.Context) {
	var place places.Place

	if err := ctx.ShouldBindJSON(&place); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	if err := s.repo.Save(&place); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusCreated, place)
}

func (s *Server) getPlace(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid id parameter"})

		return
	}

	place, err := s.repo.Get(id)
	if err != nil {
		if err == sql.ErrNoRows {
			ctx.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("place %d not found", id)})

			return
		}

		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, place)
}

func (s *Server) deletePlace(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid id parameter"})

		return
	}

	if err := s.repo.Delete(id); err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

		return
	}

	ctx.Status(http.StatusNoContent)
}

func (s *Server) listClusters(ctx *gin.Context) {
	threshold := floatQuery(ctx, "threshold", 25)

	placeList, err := s.repo.List(nil, nil, 10000, 0)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, places.ClusterPlaces(placeList, threshold))
}

func (s *Server) reverseGeocode(ctx *gin.Context) {
	if s.geocoder == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "reverse geocoding is not configured"})

		return
	}

	lat, errLat := strconv.ParseFloat(ctx.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(ctx.Query("lng"), 64)

	if errLat != nil || errLng != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng query parameters are required"})

		return
	}

	point := &spatial.Point{Lat: lat, Lng: lng}
	if !point.Valid() {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "coordinates out of range"})

		return
	}

	result, err := s.geocoder.ReverseGeocode(point)
	if err != nil {
		status := http.StatusBadGateway
		if geocode.IsRateLimitError(err) || geocode.IsQuotaExceededError(err) {
			status = http.StatusTooManyRequests
		}

		ctx.JSON(status, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, result)
}

func intQuery(ctx *gin.Context, name string, def int) int {
	v := ctx.Query(name)
	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}

func floatQuery(ctx *gin.Context, name string, def float64) float64 {
	v := ctx.Query(name)
	if v == "" {
		return def
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}

	return f
}
