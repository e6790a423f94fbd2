// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package compass

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandleReason runs one ad-hoc reasoning query over the tool registry.
func HandleReason(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ReasonRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		trace, err := svc.Reason(c.Request.Context(), req.Query, req.MaxIterations)
		if err != nil {
			status := http.StatusBadGateway
			body := gin.H{"error": err.Error()}
			if trace != nil {
				body["partial_trace"] = trace
			}
			c.JSON(status, body)
			return
		}
		c.JSON(http.StatusOK, ReasonResponse{
			Answer:         trace.Answer,
			StoppingReason: string(trace.StoppingReason),
			Iterations:     trace.Iterations,
			Steps:          trace.Steps,
		})
	}
}

// HandleInterpret runs the two-tier interpreter on a single answer.
func HandleInterpret(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req InterpretRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		interp, err := svc.Interpret(c.Request.Context(), req.Variable, req.Question, req.Answer, req.JobField)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, interp)
	}
}

// HandleTools lists the registered tool specifications.
func HandleTools(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"tools": svc.Registry().Specs()})
	}
}

// HandleHealth reports service liveness.
func HandleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "compass"})
	}
}
