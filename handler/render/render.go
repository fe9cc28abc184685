package render

import (
	"encoding/json"
	"net/http"

	"lagoon/handler/codes"

	"github.com/sirupsen/logrus"
	"github.com/twitchtv/twirp"
)

// H shorthand for ad hoc json objects
type H map[string]interface{}

// JSON render v as json
func JSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Errorln("render json")
	}
}

// Error classify err and write it with the matching status
func Error(w http.ResponseWriter, err error) {
	twerr := codes.Twirp(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(codes.Status(err))

	if err := json.NewEncoder(w).Encode(H{
		"code": string(twerr.Code()),
		"msg":  twerr.Msg(),
	}); err != nil {
		logrus.WithError(err).Errorln("render error")
	}
}

// BadRequest write a bad request error
func BadRequest(w http.ResponseWriter, err error) {
	Error(w, twirp.NewError(twirp.InvalidArgument, err.Error()))
}

// NotFound write a not found error
func NotFound(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)

	if err := json.NewEncoder(w).Encode(H{
		"code": "not_found",
		"msg":  msg,
	}); err != nil {
		logrus.WithError(err).Errorln("render not found")
	}
}
