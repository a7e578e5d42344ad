package server

import (
	"fmt"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/klass-lk/blogboot/internal/apperror"
)

// Controller registers its routes on the group it is mounted at.
type Controller interface {
	Register(group *ControllerGroup)
}

// ControllerGroup is a gin router group whose handlers are plain functions.
//
// A handler has one of these shapes, where Req is bound from the request
// (JSON body, or query string for GET) and Resp is written as JSON, or as
// text when it is a string:
//
//	func() (Resp, error)
//	func(*Context) (Resp, error)
//	func(Req) (Resp, error)
//	func(*Context, Req) (Resp, error)
type ControllerGroup struct {
	group *gin.RouterGroup
}

func (g *ControllerGroup) BasePath() string {
	return g.group.BasePath()
}

func (g *ControllerGroup) Use(middleware ...gin.HandlerFunc) {
	g.group.Use(middleware...)
}

func (g *ControllerGroup) Group(path string, middleware ...gin.HandlerFunc) *ControllerGroup {
	return &ControllerGroup{group: g.group.Group(path, middleware...)}
}

func (g *ControllerGroup) GET(path string, handler interface{}, middleware ...gin.HandlerFunc) {
	g.handle(http.MethodGet, path, handler, middleware)
}

func (g *ControllerGroup) POST(path string, handler interface{}, middleware ...gin.HandlerFunc) {
	g.handle(http.MethodPost, path, handler, middleware)
}

func (g *ControllerGroup) PUT(path string, handler interface{}, middleware ...gin.HandlerFunc) {
	g.handle(http.MethodPut, path, handler, middleware)
}

func (g *ControllerGroup) PATCH(path string, handler interface{}, middleware ...gin.HandlerFunc) {
	g.handle(http.MethodPatch, path, handler, middleware)
}

func (g *ControllerGroup) DELETE(path string, handler interface{}, middleware ...gin.HandlerFunc) {
	g.handle(http.MethodDelete, path, handler, middleware)
}

func (g *ControllerGroup) OPTIONS(path string, handler interface{}, middleware ...gin.HandlerFunc) {
	g.handle(http.MethodOptions, path, handler, middleware)
}

func (g *ControllerGroup) HEAD(path string, handler interface{}, middleware ...gin.HandlerFunc) {
	g.handle(http.MethodHead, path, handler, middleware)
}

func (g *ControllerGroup) handle(method, path string, handler interface{}, middleware []gin.HandlerFunc) {
	handlers := make([]gin.HandlerFunc, 0, len(middleware)+1)
	handlers = append(handlers, middleware...)
	handlers = append(handlers, wrapHandler(handler))
	g.group.Handle(method, path, handlers...)
}

var (
	contextType = reflect.TypeOf(&Context{})
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

func wrapHandler(handler interface{}) gin.HandlerFunc {
	hv := reflect.ValueOf(handler)
	ht := hv.Type()
	if ht.Kind() != reflect.Func {
		panic(fmt.Sprintf("handler must be a function, got %s", ht.Kind()))
	}
	if ht.NumOut() != 2 || !ht.Out(1).Implements(errorType) {
		panic(fmt.Sprintf("handler %s must return (response, error)", ht))
	}
	if ht.NumIn() > 2 {
		panic(fmt.Sprintf("handler %s takes too many arguments", ht))
	}

	ctxIdx, reqIdx := -1, -1
	for i := 0; i < ht.NumIn(); i++ {
		if ht.In(i) == contextType {
			ctxIdx = i
		} else {
			reqIdx = i
		}
	}

	return func(c *gin.Context) {
		ctx := NewContext(c)
		args := make([]reflect.Value, ht.NumIn())
		if ctxIdx >= 0 {
			args[ctxIdx] = reflect.ValueOf(ctx)
		}
		if reqIdx >= 0 {
			req, err := bindRequest(c, ht.In(reqIdx))
			if err != nil {
				ctx.SendError(err)
				return
			}
			args[reqIdx] = req
		}

		out := hv.Call(args)
		if c.IsAborted() || c.Writer.Written() {
			return
		}
		if errVal := out[1]; !errVal.IsNil() {
			ctx.SendError(errVal.Interface().(error))
			return
		}

		switch resp := out[0].Interface().(type) {
		case string:
			c.String(ctx.status, resp)
		default:
			c.JSON(ctx.status, resp)
		}
	}
}

func bindRequest(c *gin.Context, reqType reflect.Type) (reflect.Value, error) {
	isPtr := reqType.Kind() == reflect.Ptr
	base := reqType
	if isPtr {
		base = reqType.Elem()
	}
	ptr := reflect.New(base)
	if err := c.ShouldBind(ptr.Interface()); err != nil {
		return reflect.Value{}, invalidRequest(err)
	}
	if isPtr {
		return ptr, nil
	}
	return ptr.Elem(), nil
}

func invalidRequest(err error) error {
	apiErr := apperror.BadRequest(validationMessage(err))
	apiErr.Cause = err
	return apiErr
}
