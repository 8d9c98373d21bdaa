package router

import (
	"net/http"

	activityHandler "todoapi/internal/activity"
	"todoapi/internal/activity/service"
	"todoapi/middleware"
	"todoapi/socket"
)

const Prefix = "/API"

func Setup(svc *service.ActivityService, hub *socket.Hub) http.Handler {
	mux := http.NewServeMux()
	h := activityHandler.NewActivityHandler(svc)

	mux.HandleFunc("GET "+Prefix, h.Index)
	mux.HandleFunc("GET "+Prefix+"/{$}", h.Index)
	mux.HandleFunc("GET "+Prefix+"/all", h.GetAll)
	mux.HandleFunc("GET "+Prefix+"/t_search/{title}", h.SearchTitle)
	mux.HandleFunc("GET "+Prefix+"/d_search/{description}", h.SearchDescription)
	mux.HandleFunc("GET "+Prefix+"/id_search/{id}", h.SearchID)
	mux.HandleFunc("GET "+Prefix+"/seeTitle/{title}", h.SeeTitle)
	mux.HandleFunc("GET "+Prefix+"/see/{id}", h.SeeID)
	mux.HandleFunc("POST "+Prefix+"/add", h.AddActivity)
	mux.HandleFunc("DELETE "+Prefix+"/delete/{id}", h.DeleteActivity)

	// Change feed
	mux.HandleFunc("GET "+Prefix+"/ws", func(w http.ResponseWriter, r *http.Request) {
		socket.ServeWs(hub, w, r, svc.Snapshot)
	})

	return middleware.LoggingMiddleware(middleware.CORSMiddleware(mux))
}
