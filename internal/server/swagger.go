package server

//go:generate swag init -g internal/server/swagger.go -o internal/server/docs

// @title Ghost Job Checker API
// @version 1.0
// @description Scores job posting URLs by the age of their Last-Modified header.
// @contact.name Trusted Tools
// @contact.url https://ghostjobs.trusted-tools.com
// @BasePath /
