package workers

type Workers struct {
	workers []Worker
}

func NewWorkers(workerList ...Worker) *Workers {
	return &Workers{workers: workerList}
}

func (w *Workers) Run() {
	for _, worker := range w.workers {
		worker.Run()
	}
}
