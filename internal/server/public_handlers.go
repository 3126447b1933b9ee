package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) landingPage(c *gin.Context) {
	s.render(c, http.StatusOK, "index.html", gin.H{"Title": "BloodBridge"})
}

func (s *Server) aboutPage(c *gin.Context) {
	s.render(c, http.StatusOK, "about.html", gin.H{"Title": "About"})
}

func (s *Server) contactPage(c *gin.Context) {
	s.render(c, http.StatusOK, "contact.html", gin.H{"Title": "Contact"})
}

func (s *Server) notFound(c *gin.Context) {
	s.render(c, http.StatusNotFound, "notfound.html", gin.H{"Title": "Page not found"})
}
