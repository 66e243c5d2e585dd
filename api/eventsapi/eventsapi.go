// Copyright (c) 2026 The StreamPool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package eventsapi exposes the recorded operation history over HTTP.
package eventsapi

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/streampool/streampool/api/restutil"
	"github.com/streampool/streampool/eventdb"
)

// EventsAPI filters recorded pool events.
type EventsAPI struct {
	db    *eventdb.EventDB
	limit uint64
}

func New(db *eventdb.EventDB, limit uint64) *EventsAPI {
	return &EventsAPI{
		db,
		limit,
	}
}

func (e *EventsAPI) handleFilter(w http.ResponseWriter, req *http.Request) error {
	var filter eventdb.Filter
	if err := restutil.ParseJSON(req.Body, &filter); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if filter.Options != nil && filter.Options.Limit > e.limit {
		return restutil.Forbidden(fmt.Errorf("options.limit exceeds the maximum allowed value of %d", e.limit))
	}
	if filter.Range != nil && filter.Range.From > filter.Range.To {
		return restutil.BadRequest(fmt.Errorf("range.to must be greater than or equal to range.from"))
	}
	if filter.Options == nil {
		// detect result sets larger than the default limit
		filter.Options = &eventdb.Options{
			Offset: 0,
			Limit:  e.limit + 1,
		}
	}

	events, err := e.db.Filter(req.Context(), &filter)
	if err != nil {
		return err
	}
	if uint64(len(events)) > e.limit {
		return restutil.Forbidden(fmt.Errorf("the number of filtered events exceeds the maximum allowed value of %d, please use pagination", e.limit))
	}
	return restutil.WriteJSON(w, events)
}

func (e *EventsAPI) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /events").
		HandlerFunc(restutil.WrapHandlerFunc(e.handleFilter))
}
