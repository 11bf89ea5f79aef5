// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"context"
	"io"

	"github.com/txledger/engine/engine"
)

// cancelableSource wraps an engine.Source so that Run stops cleanly, with
// io.EOF rather than a half-read row, once ctx is canceled.
type cancelableSource struct {
	ctx    context.Context
	engine.Source
}

func (s cancelableSource) Next() (engine.Event, error) {
	select {
	case <-s.ctx.Done():
		return engine.Event{}, io.EOF
	default:
		return s.Source.Next()
	}
}
