package handlers

import (
	"sync"

	"github.com/paperchat/paperchat/internal/data/store"
	"github.com/paperchat/paperchat/internal/job"
	"github.com/paperchat/paperchat/internal/rag/chat"
	"github.com/paperchat/paperchat/internal/rag/vectorDB"
	"github.com/paperchat/paperchat/pkg/logx"
)

var (
	handlerInstance *handlerDeps //private singleton
	once            sync.Once
	logFH           *logx.Logger
	logMH           *logx.Logger
)

type handlerDeps struct {
	docs    store.DocumentStore
	msgs    store.MessageStore
	ingest  *job.Service
	chatSvc *chat.Pipeline
	index   vectorDB.Index
}

type Deps struct {
	Documents store.DocumentStore
	Messages  store.MessageStore
	IngestJob *job.Service
	Chat      *chat.Pipeline
	Index     vectorDB.Index
}

func Init(deps Deps) {
	once.Do(func() {
		handlerInstance = &handlerDeps{
			docs:    deps.Documents,
			msgs:    deps.Messages,
			ingest:  deps.IngestJob,
			chatSvc: deps.Chat,
			index:   deps.Index,
		}
		logFH = logx.NewLogger("FileHandler")
		logMH = logx.NewLogger("MessageHandler")
		logFH.Info("Handlers initialized")
	})
}
