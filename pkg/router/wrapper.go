package router

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskforge-lab/backend/pkg/errorx"
	"github.com/taskforge-lab/backend/pkg/xcontext"
)

func wrapHandler[Request, Response any](
	router *Router,
	method string,
	handler HandlerFunc[Request, Response],
) gin.HandlerFunc {
	return func(ginCtx *gin.Context) {
		ctx := xcontext.WithHTTPRequest(router.ctx, ginCtx.Request)

		var req Request
		var bindErr error
		switch method {
		case http.MethodGet:
			bindErr = ginCtx.ShouldBindQuery(&req)
		default:
			bindErr = ginCtx.ShouldBindJSON(&req)
			// Requests without parameters come with an empty body.
			if errors.Is(bindErr, io.EOF) {
				bindErr = nil
			}
		}

		resp, err := func() (*Response, error) {
			if bindErr != nil {
				xcontext.Logger(ctx).Debugf("Cannot bind the request: %v", bindErr)
				return nil, errorx.New(errorx.BadRequest, "Cannot bind the request")
			}

			for _, middleware := range router.befores {
				newCtx, err := middleware(ctx)
				if err != nil {
					return nil, err
				}

				if newCtx != nil {
					ctx = newCtx
				}
			}

			return handler(ctx, &req)
		}()

		for _, closer := range router.closers {
			closer(ctx, err)
		}

		if err != nil {
			ginCtx.JSON(http.StatusOK, newErrorResponse(err))
			return
		}

		ginCtx.JSON(http.StatusOK, newResponse(resp))
	}
}
