package internal

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/flastex/go-bpmn/engine"
	"github.com/flastex/go-bpmn/model"
	"github.com/jackc/pgx/v5"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

func NewProcessCache() *ProcessCache {
	return &ProcessCache{
		processes: cache.New(cache.NoExpiration, 0),
	}
}

// ProcessCache caches processes, including their parsed model and graph, by BPMN process ID and by ID.
type ProcessCache struct {
	processes *cache.Cache
}

func (c *ProcessCache) Add(process *ProcessEntity) {
	c.processes.Set(process.BpmnProcessId, process, cache.NoExpiration)
	c.processes.Set(idKey(process.Id), process, cache.NoExpiration)
}

func (c *ProcessCache) Clear() {
	c.processes.Flush()
}

func (c *ProcessCache) Get(bpmnProcessId string) (*ProcessEntity, bool) {
	v, ok := c.processes.Get(bpmnProcessId)
	if !ok {
		return nil, false
	}
	return v.(*ProcessEntity), true
}

func (c *ProcessCache) GetById(id int32) (*ProcessEntity, bool) {
	v, ok := c.processes.Get(idKey(id))
	if !ok {
		return nil, false
	}
	return v.(*ProcessEntity), true
}

func (c *ProcessCache) GetOrCache(ctx Context, bpmnProcessId string) (*ProcessEntity, error) {
	if process, ok := c.Get(bpmnProcessId); ok {
		return process, nil
	}

	process, err := ctx.Processes().SelectByBpmnProcessId(bpmnProcessId)
	if err != nil {
		return nil, err
	}

	if err := c.cache(process); err != nil {
		if _, ok := err.(engine.Error); ok {
			return nil, err
		} else {
			return nil, fmt.Errorf("failed to cache process %s: %v", bpmnProcessId, err)
		}
	}

	return process, nil
}

func (c *ProcessCache) GetOrCacheById(ctx Context, id int32) (*ProcessEntity, error) {
	if process, ok := c.GetById(id); ok {
		return process, nil
	}

	process, err := ctx.Processes().Select(id)
	if err != nil {
		return nil, err
	}

	if err := c.cache(process); err != nil {
		if _, ok := err.(engine.Error); ok {
			return nil, err
		} else {
			return nil, fmt.Errorf("failed to cache process %d: %v", id, err)
		}
	}

	return process, nil
}

func (c *ProcessCache) cache(process *ProcessEntity) error {
	if process.graph == nil {
		bpmnModel, err := model.New(strings.NewReader(process.BpmnXml))
		if err != nil {
			return err
		}

		bpmnProcess := bpmnModel.ProcessById(process.BpmnProcessId)
		if bpmnProcess == nil {
			return engine.Error{
				Type:   engine.ErrorBug,
				Title:  "failed to cache process",
				Detail: fmt.Sprintf("BPMN model has no process %s", process.BpmnProcessId),
			}
		}

		graph := newGraph(bpmnProcess)
		process.graph = &graph
	}

	c.Add(process)
	return nil
}

func idKey(id int32) string {
	return "#" + strconv.Itoa(int(id))
}

type ProcessEntity struct {
	Id int32

	BpmnProcessId string
	BpmnXml       string
	BpmnXmlMd5    string
	CreatedAt     time.Time
	IsExecutable  bool
	Name          string

	graph *graph
}

func (e ProcessEntity) Process() engine.Process {
	return engine.Process{
		Id: e.Id,

		BpmnProcessId: e.BpmnProcessId,
		CreatedAt:     e.CreatedAt,
		IsExecutable:  e.IsExecutable,
		Name:          e.Name,
	}
}

type ProcessRepository interface {
	// Insert inserts a process. If a process with the same BPMN process ID exists, [pgx.ErrNoRows] is returned.
	Insert(*ProcessEntity) error

	// Select selects a process by ID. If no process is found, [pgx.ErrNoRows] is returned.
	Select(id int32) (*ProcessEntity, error)

	// SelectByBpmnProcessId selects a process by BPMN process ID. If no process is found, [pgx.ErrNoRows] is returned.
	SelectByBpmnProcessId(bpmnProcessId string) (*ProcessEntity, error)

	Query(engine.ProcessCriteria, engine.QueryOptions) ([]engine.Process, error)
}

func CreateProcess(ctx Context, cmd engine.CreateProcessCmd) (engine.Process, error) {
	if err := validateCmd("failed to create process", cmd); err != nil {
		return engine.Process{}, err
	}

	md5Hash := md5.New()
	md5Hash.Write([]byte(cmd.BpmnXml))
	bpmnXmlMd5 := hex.EncodeToString(md5Hash.Sum(nil))

	existing, err := ctx.Processes().SelectByBpmnProcessId(cmd.BpmnProcessId)
	if err == nil {
		if existing.BpmnXmlMd5 != bpmnXmlMd5 {
			return engine.Process{}, engine.Error{
				Type:   engine.ErrorConflict,
				Title:  "failed to create process",
				Detail: fmt.Sprintf("process %s has been created with a different BPMN XML", cmd.BpmnProcessId),
			}
		}
		return existing.Process(), nil
	}
	if err != pgx.ErrNoRows {
		return engine.Process{}, err
	}

	bpmnModel, err := model.New(strings.NewReader(cmd.BpmnXml))
	if err != nil {
		return engine.Process{}, engine.Error{
			Type:   engine.ErrorProcessModel,
			Title:  "failed to create process",
			Detail: fmt.Sprintf("BPMN XML is invalid: %v", err),
		}
	}

	bpmnProcess := bpmnModel.ProcessById(cmd.BpmnProcessId)
	if bpmnProcess == nil {
		bpmnProcessIds := make([]string, len(bpmnModel.Processes))
		for i := range bpmnProcessIds {
			bpmnProcessIds[i] = bpmnModel.Processes[i].Id
		}

		return engine.Process{}, engine.Error{
			Type:   engine.ErrorProcessModel,
			Title:  "failed to create process",
			Detail: fmt.Sprintf("BPMN model has no process %s, but [%s]", cmd.BpmnProcessId, strings.Join(bpmnProcessIds, ", ")),
		}
	}

	graph := newGraph(bpmnProcess)

	process := ProcessEntity{
		BpmnProcessId: cmd.BpmnProcessId,
		BpmnXml:       cmd.BpmnXml,
		BpmnXmlMd5:    bpmnXmlMd5,
		CreatedAt:     ctx.Time(),
		IsExecutable:  bpmnProcess.IsExecutable,
		Name:          bpmnProcess.Name,

		graph: &graph,
	}

	if err := ctx.Processes().Insert(&process); err == pgx.ErrNoRows {
		return engine.Process{}, engine.Error{
			Type:   engine.ErrorConflict,
			Title:  "failed to create process",
			Detail: fmt.Sprintf("process %s has been created concurrently", cmd.BpmnProcessId),
		}
	} else if err != nil {
		return engine.Process{}, err
	}

	ctx.ProcessCache().Add(&process)

	ctx.Logger().Info("process created",
		zap.Int32("id", process.Id),
		zap.String("bpmnProcessId", process.BpmnProcessId),
		zap.Int("flowObjects", len(bpmnProcess.FlowObjects())),
	)

	return process.Process(), nil
}

func GetBpmnXml(ctx Context, cmd engine.GetBpmnXmlCmd) (string, error) {
	if err := validateCmd("failed to get BPMN XML", cmd); err != nil {
		return "", err
	}

	process, err := ctx.Processes().Select(cmd.ProcessId)
	if err == pgx.ErrNoRows {
		return "", engine.Error{
			Type:   engine.ErrorNotFound,
			Title:  "failed to get BPMN XML",
			Detail: fmt.Sprintf("process %d could not be found", cmd.ProcessId),
		}
	}
	if err != nil {
		return "", err
	}

	return process.BpmnXml, nil
}
