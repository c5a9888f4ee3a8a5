package mocks

//go:generate mockery --name RowSource --srcpkg github.com/aevon-lab/project-vitals/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
//go:generate mockery --name MedicalResourceStore --srcpkg github.com/aevon-lab/project-vitals/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
//go:generate mockery --name AccessLogStore --srcpkg github.com/aevon-lab/project-vitals/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
//go:generate mockery --name RecordWriter --srcpkg github.com/aevon-lab/project-vitals/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
//go:generate mockery --name MedicalResourceWriter --srcpkg github.com/aevon-lab/project-vitals/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
