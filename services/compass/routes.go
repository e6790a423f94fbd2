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
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the REST and websocket surface on the router.
func RegisterRoutes(r *gin.Engine, svc *Service) {
	v1 := r.Group("/v1/compass")
	{
		v1.POST("/reason", HandleReason(svc))
		v1.POST("/interpret", HandleInterpret(svc))
		v1.GET("/tools", HandleTools(svc))
		v1.GET("/health", HandleHealth())
		v1.GET("/ws/conversation", HandleConversation(svc))
	}
}
