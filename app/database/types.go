package database

import (
	"time"
)

type Document struct {
	ID              string
	Title           string
	Slug            string
	Content         string
	Excerpt         string
	Status          string // publish, draft, pending, private, scheduled
	PostType        string
	AuthorID        string
	FeaturedAssetID string // empty when no primary asset is set
	PublishedAt     time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Asset struct {
	ID              string
	Filename        string
	MimeType        string
	OwnerDocumentID string
	OriginURL       string // query-stripped source URL, the dedup key
	AltText         string
	CreatedAt       time.Time
}

type Category struct {
	ID          string
	Name        string
	Slug        string
	Description string
	Count       int
}

type Tag struct {
	ID    string
	Name  string
	Slug  string
	Count int
}

type Author struct {
	ID   string
	Name string
	Role string
}

// RunEntry records one document whose body was rewritten during a bulk run.
type RunEntry struct {
	DocumentID string    `json:"document_id"`
	Title      string    `json:"title"`
	Time       time.Time `json:"time"`
}

const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
)

// Run is the persisted state of a bulk image import. ProcessedIDs is the
// resume cursor: ids already visited, changed or not.
type Run struct {
	Status         string
	StartedAt      time.Time
	LastRunAt      *time.Time
	CompletedAt    *time.Time
	ProcessedIDs   []string
	UpdatedEntries []RunEntry
}
